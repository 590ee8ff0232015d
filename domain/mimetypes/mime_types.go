package mimetypes

import (
	"chat-store/domain/chat"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown     MIME = "unknown"
	TextPlain   MIME = "text/plain"
	OctetStream MIME = "application/octet-stream"

	ApplicationPDF MIME = "application/pdf"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWEBP MIME = "image/webp"

	VideoMP4  MIME = "video/mp4"
	VideoWEBM MIME = "video/webm"
)

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// Canonical strips parameters and resolves aliases known to the detector,
// e.g. "application/x-pdf" becomes "application/pdf".
func Canonical(declared string) MIME {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return Unknown
	}
	if m := mimetype.Lookup(mt); m != nil {
		mt, _, _ = mime.ParseMediaType(m.String())
	}
	return MIME(strings.ToLower(mt))
}

// Known reports whether the detector has a signature for the type.
func Known(declared string) bool {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return false
	}
	return mimetype.Lookup(mt) != nil
}

// Extension returns the usual file extension, dot included, or "".
func Extension(declared string) string {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return ""
	}
	if m := mimetype.Lookup(mt); m != nil {
		return m.Extension()
	}
	return ""
}

// Sniff detects the MIME type from the first bytes of a payload.
func Sniff(head []byte) MIME {
	return Canonical(mimetype.Detect(head).String())
}

// KindOf maps a MIME type to the attachment type used by comments.
func KindOf(declared string) chat.AttachmentType {
	mt := Canonical(declared)
	switch {
	case mt == ApplicationPDF:
		return chat.AttachmentPDF
	case strings.HasPrefix(string(mt), "image/"):
		return chat.AttachmentImage
	case strings.HasPrefix(string(mt), "video/"):
		return chat.AttachmentVideo
	default:
		return chat.AttachmentFile
	}
}
