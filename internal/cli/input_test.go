package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("demo host\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Host", &out)
	if err != nil || got != "demo host" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if !strings.Contains(out.String(), "Host") {
		t.Fatalf("prompt not printed: %q", out.String())
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetPassword_Stubbed(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return []byte("p@ssw0rd!"), nil
	}

	var out bytes.Buffer
	pw, err := GetPassword("Master passphrase", &out)
	if err != nil {
		t.Fatal(err)
	}
	if string(pw) != "p@ssw0rd!" {
		t.Fatalf("got %q", pw)
	}
	if strings.Contains(out.String(), "p@ssw0rd!") {
		t.Fatal("password echoed to output")
	}
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}

	var out bytes.Buffer
	if _, err := GetPassword("Master passphrase", &out); err == nil {
		t.Fatal("expected error")
	}
}
