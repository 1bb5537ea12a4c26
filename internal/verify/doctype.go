package verify

import "strings"

// DocumentType classifies a scan by the certificate heading found in its
// extracted text.
type DocumentType string

const (
	DocTypeCertificateOfBirth     DocumentType = "Certificate of Birth"
	DocTypeCertifiedTranscript    DocumentType = "Certified Birth Transcript"
	DocTypeCertificateOfLiveBirth DocumentType = "Certificate of Live Birth"
	DocTypeUnknown                DocumentType = "Unknown Document Type"
)

// documentHeadings maps the uppercase heading phrases to their types, in
// match-priority order.
var documentHeadings = []struct {
	phrase  string
	docType DocumentType
}{
	{"CERTIFICATE OF BIRTH", DocTypeCertificateOfBirth},
	{"CERTIFIED TRANSCRIPT OF BIRTH", DocTypeCertifiedTranscript},
	{"CERTIFICATE OF LIVE BIRTH", DocTypeCertificateOfLiveBirth},
}

// DetectDocumentType classifies extracted text by its certificate heading.
// Matching is case-insensitive; text with no known heading yields
// DocTypeUnknown.
func DetectDocumentType(text string) DocumentType {
	upper := strings.ToUpper(text)
	for _, h := range documentHeadings {
		if strings.Contains(upper, h.phrase) {
			return h.docType
		}
	}
	return DocTypeUnknown
}

// Known reports whether the type is one of the recognized certificate
// headings.
func (d DocumentType) Known() bool {
	return d != DocTypeUnknown && d != ""
}
