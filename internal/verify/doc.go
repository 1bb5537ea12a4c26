// Package verify implements the certificate screening pipeline: document
// classification, serial extraction, the forensics checks, and the 0-10
// confidence score behind the proceed / hold / reject recommendation.
//
// A Verifier fans the independent checks out concurrently (OCR over the
// preprocessed scan; edge, sharpness, and ink analysis over the original)
// and assembles a Report. Scoring is deterministic for a given Analysis.
//
// The score is advisory. A "proceed" recommendation means the scan shows
// the surface features of genuine certificate stock, not that the document
// is legally valid.
package verify
