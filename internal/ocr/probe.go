package ocr

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/otiai10/gosseract/v2"
)

// tesseractBinaryPaths are the conventional install locations checked before
// falling back to a PATH lookup.
var tesseractBinaryPaths = []string{
	"/usr/bin/tesseract",
	"/usr/local/bin/tesseract",
}

// Info reports the availability of the OCR engine in the current
// environment. It backs the `doctor` command and the /healthz endpoint.
type Info struct {
	// Available is true when the engine can be used for extraction.
	Available bool `json:"available"`

	// Version is the Tesseract engine version, when detectable.
	Version string `json:"version,omitempty"`

	// BinaryPath is where the tesseract binary was found, if anywhere.
	BinaryPath string `json:"binary_path,omitempty"`

	// Languages lists the installed traineddata languages.
	Languages []string `json:"languages,omitempty"`

	// Error describes why the engine is unavailable.
	Error string `json:"error,omitempty"`

	// Remedy is platform-specific installation guidance, set when the
	// engine is unavailable.
	Remedy string `json:"remedy,omitempty"`
}

// Probe checks whether Tesseract is usable: the engine version must be
// readable and at least one language pack installed.
//
// The binary path is probed for diagnostics even though extraction goes
// through the library binding; a present binary with no traineddata (or the
// reverse) is the most common broken state on fresh hosts.
func Probe() Info {
	info := Info{BinaryPath: findBinary()}

	info.Version = engineVersion()
	if info.Version == "" {
		info.Error = "tesseract engine not found"
		info.Remedy = InstallGuidance()
		return info
	}

	langs, err := gosseract.GetAvailableLanguages()
	if err != nil || len(langs) == 0 {
		info.Error = "no tesseract language data installed"
		info.Remedy = InstallGuidance()
		return info
	}
	info.Languages = langs
	info.Available = true
	return info
}

// HasLanguage reports whether the given language pack is installed.
func (i Info) HasLanguage(lang string) bool {
	for _, l := range i.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// findBinary returns the tesseract binary location, or "".
func findBinary() string {
	for _, p := range tesseractBinaryPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if p, err := exec.LookPath("tesseract"); err == nil {
		return p
	}
	return ""
}

// engineVersion returns the linked Tesseract version, or "".
func engineVersion() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// InstallGuidance returns installation instructions for the current
// platform.
func InstallGuidance() string {
	switch runtime.GOOS {
	case "darwin":
		return "install Tesseract with: brew install tesseract"
	case "windows":
		return "install Tesseract from https://github.com/UB-Mannheim/tesseract/wiki " +
			"and add the install directory to PATH"
	default:
		return fmt.Sprintf("install Tesseract with: apt-get install %s %s "+
			"(or declare both packages in apt.txt on manifest-provisioned hosts)",
			"tesseract-ocr", "tesseract-ocr-eng")
	}
}
