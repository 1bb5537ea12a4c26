// Package imaging provides the image-forensics primitives behind certificate
// screening: decoding and caching, OCR preprocessing, Canny edge profiling,
// Laplacian sharpness measurement, and ink hue analysis.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Scales
//
// Edge scores and Laplacian values are expressed on the 0-255 intensity scale
// of an 8-bit grayscale image. The seal-detection and pixelation thresholds
// used by the verification pipeline are defined on that scale.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The analysis functions are
// stateless, never mutate their input image, and can be called concurrently.
package imaging
