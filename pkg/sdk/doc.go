// Package gemdex provides a Go client for the gemdex jewelry search API.
//
//	client := gemdex.New("http://localhost:8080")
//	results, _ := client.SearchText(ctx, "gold diamond ring",
//	    gemdex.WithTopK(5),
//	    gemdex.WithCategory("ring"),
//	)
//
// Image, sketch and handwriting queries take the raw image bytes:
//
//	results, _ = client.SearchImage(ctx, photoBytes)
//	results, _ = client.SearchSketch(ctx, drawingBytes)
//	hw, _ := client.SearchHandwriting(ctx, noteBytes)
//	fmt.Println(hw.RefinedText, len(hw.Results))
package gemdex
