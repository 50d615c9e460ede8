package utils

import (
	"context"
	"errors"
	"io"
	"testing"

	"game-platform/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shopspring/decimal"
)

func TestFormatCoins(t *testing.T) {
	tests := map[string]string{
		"0":       "P$ 0.00",
		"10":      "P$ 10.00",
		"2.5":     "P$ 2.50",
		"1250":    "P$ 1,250.00",
		"99.999":  "P$ 100.00",
		"1234567": "P$ 1,234,567.00",
		"-2.5":    "P$ -2.50",

		"12345678901234567.89":           "P$ 12,345,678,901,234,567.89",
		"123456789012345678901234567.05": "P$ 123,456,789,012,345,678,901,234,567.05",
	}
	for in, want := range tests {
		if got := FormatCoins(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatCoins(%s) = %q, want %q", in, got, want)
		}
	}
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestR2UploaderUpload(t *testing.T) {
	put := &fakePutter{}
	u := newR2Uploader(put, "ledgers", "https://cdn.example.com/")

	url, err := u.Upload(context.Background(), "patches/arena/1.1.0.json", []byte(`{"ok":true}`), "application/json")
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://cdn.example.com/patches/arena/1.1.0.json" {
		t.Fatalf("unexpected url %q", url)
	}
	if aws.ToString(put.in.Bucket) != "ledgers" || aws.ToString(put.in.ContentType) != "application/json" {
		t.Fatalf("unexpected input bucket=%s type=%s", aws.ToString(put.in.Bucket), aws.ToString(put.in.ContentType))
	}
	if string(put.body) != `{"ok":true}` {
		t.Fatalf("unexpected body %q", put.body)
	}

	put.err = errors.New("denied")
	if _, err := u.Upload(context.Background(), "k", nil, "text/plain"); err == nil {
		t.Fatal("expected upload error")
	}
}

func TestOpenDatabaseInMemory(t *testing.T) {
	db, err := OpenDatabase("")
	if err != nil {
		t.Fatal(err)
	}
	if !db.Migrator().HasTable(&models.HistoryRecord{}) {
		t.Fatal("history table not migrated")
	}
}
