package ooxml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
)

var (
	// ErrLegacyFormat matches any LegacyFormatError.
	ErrLegacyFormat = errors.New("legacy BIFF workbook")

	// ErrEncrypted is returned for password-protected workbooks.
	ErrEncrypted = errors.New("workbook is encrypted")

	// ErrUnknownFormat is returned when the content is neither an OOXML
	// package nor an OLE2 compound file.
	ErrUnknownFormat = errors.New("unrecognised workbook format")
)

var (
	zipSignature = []byte("PK\x03\x04")
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Format identifies the container a workbook file uses.
type Format string

const (
	FormatOOXML     Format = "ooxml"
	FormatLegacy    Format = "legacy"
	FormatEncrypted Format = "encrypted"
	FormatUnknown   Format = "unknown"
)

// CompoundInfo summarises an OLE2 compound file.
type CompoundInfo struct {
	Streams    []string
	Properties map[string]string
	Workbook   bool // a BIFF "Workbook" or "Book" stream is present
	Encrypted  bool // an "EncryptedPackage" stream is present
}

// LegacyFormatError reports a BIFF workbook. Those can be listed and
// inspected but not rewritten.
type LegacyFormatError struct {
	Info *CompoundInfo
}

func (e *LegacyFormatError) Error() string {
	if title := e.Info.Properties["Title"]; title != "" {
		return fmt.Sprintf("%v %q: rewriting is not supported", ErrLegacyFormat, title)
	}
	return ErrLegacyFormat.Error() + ": rewriting is not supported"
}

func (e *LegacyFormatError) Unwrap() error {
	return ErrLegacyFormat
}

// DetectFormat classifies workbook content by its leading bytes and, for
// compound files, by the streams they hold.
func DetectFormat(data []byte) (Format, *CompoundInfo) {
	switch {
	case bytes.HasPrefix(data, zipSignature):
		return FormatOOXML, nil
	case bytes.HasPrefix(data, oleSignature):
		info, err := inspectCompound(bytes.NewReader(data))
		if err != nil {
			return FormatUnknown, nil
		}
		switch {
		case info.Encrypted:
			return FormatEncrypted, info
		case info.Workbook:
			return FormatLegacy, info
		}
		return FormatUnknown, info
	}
	return FormatUnknown, nil
}

// formatError maps a non-OOXML format to the error Open returns for it.
func formatError(format Format, info *CompoundInfo) error {
	switch format {
	case FormatLegacy:
		return &LegacyFormatError{Info: info}
	case FormatEncrypted:
		return ErrEncrypted
	}
	return ErrUnknownFormat
}

// inspectCompound walks every entry of a compound file, collecting stream
// names and the summary information property sets.
func inspectCompound(r io.ReaderAt) (*CompoundInfo, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return nil, fmt.Errorf("read compound file: %w", err)
	}

	info := &CompoundInfo{Properties: make(map[string]string)}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		name := printable(entry.Name)
		info.Streams = append(info.Streams, name)

		switch {
		case name == "Workbook" || name == "Book":
			info.Workbook = true
		case name == "EncryptedPackage":
			info.Encrypted = true
		case strings.HasSuffix(name, "SummaryInformation"):
			props, err := msoleps.NewFrom(entry)
			if err != nil {
				continue
			}
			for _, p := range props.Property {
				if value := fmt.Sprint(p); value != "" {
					info.Properties[p.Name] = value
				}
			}
		}
	}
	sort.Strings(info.Streams)

	return info, nil
}

// printable drops the control-character prefixes OLE uses on reserved
// stream names such as "\x05SummaryInformation".
func printable(name string) string {
	return strings.TrimFunc(name, unicode.IsControl)
}
