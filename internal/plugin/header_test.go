package plugin

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
)

func buildHeaderBytes(t *testing.T, flags uint32, subrecords [][3]any) []byte {
	t.Helper()
	var body bytes.Buffer
	for _, sr := range subrecords {
		sig := sr[0].(string)
		data := sr[1].([]byte)
		body.WriteString(sig)
		binary.Write(&body, binary.LittleEndian, uint16(len(data)))
		body.Write(data)
	}

	var buf bytes.Buffer
	buf.WriteString("TES4")
	binary.Write(&buf, binary.LittleEndian, uint32(body.Len()))
	binary.Write(&buf, binary.LittleEndian, flags)
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // form ID
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // timestamp
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // form version
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // unknown
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func nullTerminated(s string) []byte {
	return append([]byte(s), 0)
}

func TestHeaderReader_Read_AuthorAndDescription(t *testing.T) {
	raw := buildHeaderBytes(t, flagMaster, [][3]any{
		{signatureCNAM, nullTerminated("Some Author"), nil},
		{signatureSNAM, nullTerminated("A plugin description."), nil},
		{signatureMAST, nullTerminated("Skyrim.esm"), nil},
		{signatureDATA, func() []byte {
			b := make([]byte, 8)
			binary.LittleEndian.PutUint64(b, 12345)
			return b
		}(), nil},
	})

	hr := NewHeaderReader()
	header, err := hr.Read(context.Background(), bytes.NewReader(raw), "Test.esm")
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if !header.IsMaster {
		t.Errorf("expected IsMaster true")
	}
	if header.Author != "Some Author" {
		t.Errorf("Author = %q, want %q", header.Author, "Some Author")
	}
	if header.Description != "A plugin description." {
		t.Errorf("Description = %q, want %q", header.Description, "A plugin description.")
	}
	if len(header.Masters) != 1 || header.Masters[0].Filename != "Skyrim.esm" || header.Masters[0].Size != 12345 {
		t.Errorf("Masters = %+v, want one Skyrim.esm entry with size 12345", header.Masters)
	}
}

func TestHeaderReader_Read_WrongSignature(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("GRUP")
	buf.Write(make([]byte, 20))

	hr := NewHeaderReader()
	_, err := hr.Read(context.Background(), &buf, "Bad.esp")
	if err == nil {
		t.Fatal("expected an error for a non-TES4 signature")
	}
}

func TestHeaderReader_Read_Truncated(t *testing.T) {
	hr := NewHeaderReader()
	_, err := hr.Read(context.Background(), bytes.NewReader([]byte("TES4")), "Truncated.esp")
	if err == nil {
		t.Fatal("expected an error for a truncated header")
	}
}

func TestIsPluginFile(t *testing.T) {
	cases := map[string]bool{
		"Foo.esp":            true,
		"Foo.ESM":            true,
		"Foo.esl":            true,
		"rules.omwaddon":     true,
		"mymod.archive":      true,
		"script.reds":        true,
		"readme.txt":         false,
		"noextension":        false,
	}
	for name, want := range cases {
		if got := IsPluginFile(name); got != want {
			t.Errorf("IsPluginFile(%q) = %v, want %v", name, got, want)
		}
	}
}
