package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Detector maps a location to a SourceType
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// DetectType tries the location pattern first and falls back to sniffing
// the file header.
func (d *Detector) DetectType(location string) (SourceType, error) {
	if sourceType := d.detectFromLocation(location); sourceType != SourceTypeUnsupported {
		return sourceType, nil
	}

	return d.detectFromHeader(location)
}

// detectFromLocation matches scheme prefixes and file extensions
func (d *Detector) detectFromLocation(location string) SourceType {
	if scheme, _, ok := strings.Cut(location, ":"); ok {
		switch strings.ToLower(scheme) {
		case "fixture":
			return SourceTypeFixture
		case "sine", "harmonic", "tile":
			return SourceTypeSynthetic
		}
	}

	switch strings.ToLower(filepath.Ext(location)) {
	case ".wav", ".wave":
		return SourceTypeWAV
	case ".raw", ".s8", ".pcm":
		return SourceTypeRaw
	}

	return SourceTypeUnsupported
}

// detectFromHeader opens the file and looks for a RIFF/WAVE header
func (d *Detector) detectFromHeader(location string) (SourceType, error) {
	f, err := os.Open(location)
	if err != nil {
		return SourceTypeUnsupported, NewSourceError(
			SourceTypeUnsupported, location, ErrCodeInvalidLocation,
			"unable to determine source type from location", err,
		)
	}
	defer f.Close()

	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err == nil &&
		bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")) {
		return SourceTypeWAV, nil
	}

	return SourceTypeUnsupported, NewSourceError(
		SourceTypeUnsupported, location, ErrCodeUnsupported,
		"unable to determine source type from location or header", nil,
	)
}
