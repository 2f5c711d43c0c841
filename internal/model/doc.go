// Package model defines the core data structures used throughout
// the emoji-kitchen downloader.
//
// # Pair
//
// Pair is an ordered emoji combination. Order matters: ("😀", "😎") and
// ("😎", "😀") are distinct requests and distinct files.
//
//	pair := model.NewPair("😀", "😎")
//	key := pair.Key() // CodepointKey{First: "1f600", Second: "1f60e"}
//
// # Path Resolution
//
// Resolve maps a pair, a size and a FilenameFormat to a deterministic path:
//
//	p, err := model.Resolve("/downloads", pair, 512, model.FormatCodepoint)
//	fmt.Println(p.Full()) // /downloads/1f600/1f600_1f60e_512.png
//
// # Outcomes
//
// Outcome is the transient result of one fetch. ErrorKind classifies failures
// so callers can tell an expected 404 from a real fault:
//
//	if !outcome.OK() && outcome.Kind == model.KindNotFound {
//	    // no such combination
//	}
package model
