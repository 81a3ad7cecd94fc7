package plugin

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Common errors returned by the header reader.
var (
	ErrTruncatedFile    = errors.New("plugin: file is truncated")
	ErrNotPlugin        = errors.New("plugin: not a valid plugin file")
	ErrInvalidSignature = errors.New("plugin: invalid record signature")
)

// Record flag constants for the TES4 record.
const (
	flagMaster    uint32 = 0x00000001
	flagLocalized uint32 = 0x00000080
	flagLight     uint32 = 0x00000200
)

// Record type signatures read out of a TES4 plugin header. A Morrowind
// plugin's TES3 header record is not recognized: Read rejects any first
// record other than TES4.
const (
	signatureTES4 = "TES4"
	signatureHEDR = "HEDR"
	signatureCNAM = "CNAM"
	signatureSNAM = "SNAM"
	signatureMAST = "MAST"
	signatureDATA = "DATA"
)

// Master is a master-file dependency declared in a plugin's header.
type Master struct {
	Filename string `json:"filename"`
	Size     uint64 `json:"size,omitempty"`
}

// Header is the metadata read out of a plugin's header record. Cyberpunk
// archives and redscripts have no analogous header, so a Header is only
// ever produced for ESM/ESP/ESL files; other plugin kinds get their
// Record's optional fields from the filesystem alone (size, mtime).
type Header struct {
	Filename    string   `json:"filename"`
	IsMaster    bool     `json:"isMaster"`
	IsLight     bool     `json:"isLight"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Masters     []Master `json:"masters"`
	NumRecords  uint32   `json:"numRecords,omitempty"`
}

// HeaderReader reads the TES4 header record from Bethesda-family plugin
// files. It never reads past the header record's declared data size, so it
// is cheap even against multi-gigabyte plugins.
type HeaderReader struct{}

// NewHeaderReader creates a plugin header reader.
func NewHeaderReader() *HeaderReader { return &HeaderReader{} }

// ReadFile opens path and reads its header.
func (hr *HeaderReader) ReadFile(ctx context.Context, path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: open %s: %w", path, err)
	}
	defer f.Close()
	return hr.Read(ctx, f, filepath.Base(path))
}

// Read reads a header from r. filename is used only to report errors and
// is not otherwise trusted.
func (hr *HeaderReader) Read(ctx context.Context, r io.Reader, filename string) (*Header, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := &Header{Filename: filename, Masters: []Master{}}

	rh, err := readRecordHeader(r)
	if err != nil {
		return nil, err
	}
	if rh.signature != signatureTES4 {
		return nil, fmt.Errorf("%w: expected TES4, got %s", ErrInvalidSignature, rh.signature)
	}

	header.IsMaster = rh.flags&flagMaster != 0
	header.IsLight = rh.flags&flagLight != 0

	data := make([]byte, rh.dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedFile, err)
	}
	if err := parseSubrecords(data, header); err != nil {
		return nil, err
	}
	return header, nil
}

type recordHeader struct {
	signature string
	dataSize  uint32
	flags     uint32
}

// readRecordHeader reads the fixed 24-byte record header layout used from
// Skyrim onward (type, data size, flags, form ID, timestamp/VC, form
// version, unknown).
func readRecordHeader(r io.Reader) (*recordHeader, error) {
	var buf [24]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedFile, err)
		}
		return nil, fmt.Errorf("plugin: read record header: %w", err)
	}

	signature := string(buf[0:4])
	for _, c := range signature {
		if c < 32 || c > 126 {
			return nil, fmt.Errorf("%w: invalid characters in signature", ErrNotPlugin)
		}
	}

	return &recordHeader{
		signature: signature,
		dataSize:  binary.LittleEndian.Uint32(buf[4:8]),
		flags:     binary.LittleEndian.Uint32(buf[8:12]),
	}, nil
}

func parseSubrecords(data []byte, header *Header) error {
	reader := bytes.NewReader(data)

	for reader.Len() > 0 {
		var subHeader [6]byte
		if _, err := io.ReadFull(reader, subHeader[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("plugin: read subrecord header: %w", err)
		}

		subType := string(subHeader[0:4])
		subSize := binary.LittleEndian.Uint16(subHeader[4:6])

		subData := make([]byte, subSize)
		if _, err := io.ReadFull(reader, subData); err != nil {
			return fmt.Errorf("plugin: read subrecord %s data: %w", subType, err)
		}

		switch subType {
		case signatureHEDR:
			if len(subData) >= 8 {
				header.NumRecords = binary.LittleEndian.Uint32(subData[4:8])
			}
		case signatureCNAM:
			header.Author = readNullString(subData)
		case signatureSNAM:
			header.Description = readNullString(subData)
		case signatureMAST:
			if name := readNullString(subData); name != "" {
				header.Masters = append(header.Masters, Master{Filename: name})
			}
		case signatureDATA:
			if len(subData) >= 8 && len(header.Masters) > 0 {
				header.Masters[len(header.Masters)-1].Size = binary.LittleEndian.Uint64(subData[0:8])
			}
		}
	}
	return nil
}

func readNullString(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}

// HasBinaryHeader reports whether filename's extension denotes a plugin
// kind that may carry a TES4-style header record. Morrowind .esm/.esp files
// carry a TES3 header instead, which HeaderReader rejects.
func HasBinaryHeader(filename string) bool {
	switch strings.ToLower(extOf(filename)) {
	case ".esm", ".esp", ".esl":
		return true
	default:
		return false
	}
}
