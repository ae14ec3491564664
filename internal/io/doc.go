// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - File copying and writing
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Preview thumbnail scaling
//
// # File Operations
//
//	// Copy a cached preview next to an installed map
//	err := ioutils.CopyFile(ctx, "/cache/42.png", "/maps/Rings/Rings.png")
//
//	// Write data to file
//	err := ioutils.WriteFile(ctx, "/maps/Rings/Rings.json", sidecar)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/maps/Rings")
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Map: Part 1/2") // Returns "Map_ Part 1_2"
//
// # Image Processing
//
// The ImageService scales preview pictures down for terminal display:
//
//	svc := ioutils.NewImageService()
//
//	// Scale image to fit within 40x24
//	thumb, _ := svc.Thumbnail(ctx, imageData, 40, 24)
package ioutils
