package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"statement-import-service/internal/models"
	"statement-import-service/internal/session"

	"github.com/spf13/viper"
)

func TestValidateFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "statement.pdf")
	if err := os.WriteFile(validFile, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		filePath    string
		expectError bool
	}{
		{"valid file", validFile, false},
		{"empty path", "", true},
		{"non-existent file", "/non/existent/statement.pdf", true},
		{"directory instead of file", tmpDir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, "test file")

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func newParsingSession(t *testing.T) *session.Session {
	t.Helper()
	run := session.NewSession()
	if err := run.StartSelection(); err != nil {
		t.Fatalf("StartSelection failed: %v", err)
	}
	if err := run.StartParsing(); err != nil {
		t.Fatalf("StartParsing failed: %v", err)
	}
	return run
}

func TestPreviewOrFail(t *testing.T) {
	t.Run("errors only moves session to error", func(t *testing.T) {
		run := newParsingSession(t)
		result := &models.ImportResult{
			Total:  0,
			Errors: []string{"no JSON object found in model response"},
		}

		err := previewOrFail(run, result)
		if err == nil {
			t.Fatal("expected an error when parsing produced nothing but errors")
		}
		if run.State() != session.StateError {
			t.Errorf("expected session state %s, got %s", session.StateError, run.State())
		}
		if run.Err() == nil {
			t.Error("expected the session to record the failure cause")
		}
	})

	t.Run("all duplicates still previews", func(t *testing.T) {
		run := newParsingSession(t)
		result := &models.ImportResult{
			Total:      2,
			Duplicates: 2,
		}

		if err := previewOrFail(run, result); err != nil {
			t.Fatalf("expected preview for an all-duplicates result, got: %v", err)
		}
		if run.State() != session.StatePreview {
			t.Errorf("expected session state %s, got %s", session.StatePreview, run.State())
		}
	})

	t.Run("rows with partial errors previews", func(t *testing.T) {
		run := newParsingSession(t)
		result := &models.ImportResult{
			Total:           1,
			NewTransactions: []*models.ParsedTransaction{{}},
			Errors:          []string{"line 7: bad date"},
		}

		if err := previewOrFail(run, result); err != nil {
			t.Fatalf("expected preview when some rows parsed, got: %v", err)
		}
		if run.State() != session.StatePreview {
			t.Errorf("expected session state %s, got %s", session.StatePreview, run.State())
		}
	})
}

func TestValidateImportFlags(t *testing.T) {
	tmpDir := t.TempDir()
	pdfFile := filepath.Join(tmpDir, "statement.pdf")
	photoFile := filepath.Join(tmpDir, "page1.jpg")

	if err := os.WriteFile(pdfFile, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("failed to create pdf file: %v", err)
	}
	if err := os.WriteFile(photoFile, []byte{0xFF, 0xD8, 0xFF}, 0644); err != nil {
		t.Fatalf("failed to create photo file: %v", err)
	}

	tests := []struct {
		name          string
		setupFlags    func()
		expectError   bool
		errorContains string
	}{
		{
			name: "valid pdf import",
			setupFlags: func() {
				viper.Set("file", pdfFile)
				viper.Set("photos", []string{})
				viper.Set("output-format", "console")
			},
			expectError: false,
		},
		{
			name: "valid photo import",
			setupFlags: func() {
				viper.Set("file", "")
				viper.Set("photos", []string{photoFile})
				viper.Set("output-format", "json")
			},
			expectError: false,
		},
		{
			name: "no input at all",
			setupFlags: func() {
				viper.Set("file", "")
				viper.Set("photos", []string{})
			},
			expectError:   true,
			errorContains: "either --file or --photos is required",
		},
		{
			name: "both inputs given",
			setupFlags: func() {
				viper.Set("file", pdfFile)
				viper.Set("photos", []string{photoFile})
			},
			expectError:   true,
			errorContains: "mutually exclusive",
		},
		{
			name: "missing statement file",
			setupFlags: func() {
				viper.Set("file", filepath.Join(tmpDir, "missing.pdf"))
				viper.Set("photos", []string{})
			},
			expectError:   true,
			errorContains: "does not exist",
		},
		{
			name: "invalid output format",
			setupFlags: func() {
				viper.Set("file", pdfFile)
				viper.Set("photos", []string{})
				viper.Set("output-format", "xml")
			},
			expectError:   true,
			errorContains: "invalid output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			viper.Set("output-format", "console")
			tt.setupFlags()

			err := validateImportFlags(importCmd, nil)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("expected error to contain %q, got %q", tt.errorContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
