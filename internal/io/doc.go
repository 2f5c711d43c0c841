// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Atomic file writes (write to a temp file, then rename)
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - PNG dimension checks and resizing
//
// # File Operations
//
//	// Write data so readers never observe a partial file
//	err := ioutils.WriteFile(ctx, "/out/1f600/1f600_1f60e_512.png", data)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/out/1f600")
//
// # Image Processing
//
// The ImageService normalizes downloaded combinations to the requested size:
//
//	svc := ioutils.NewImageService()
//	png, _ := svc.Normalize(ctx, data, 512)
package ioutils
