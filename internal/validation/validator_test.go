// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/lectern/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

func validUpdate() models.SessionUpdate {
	return models.SessionUpdate{
		UserID:     1,
		DocumentID: 2,
		Position:   10,
		Progress:   50,
		TimeDelta:  60,
		SpeedWPM:   220,
	}
}

func TestValidateStruct_SessionUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(*models.SessionUpdate)
		wantField string
		wantTag   string
	}{
		{name: "valid"},
		{name: "progress above 100", modify: func(u *models.SessionUpdate) { u.Progress = 100.5 }, wantField: "progress", wantTag: "lte"},
		{name: "negative progress", modify: func(u *models.SessionUpdate) { u.Progress = -1 }, wantField: "progress", wantTag: "gte"},
		{name: "negative time delta", modify: func(u *models.SessionUpdate) { u.TimeDelta = -5 }, wantField: "time_delta", wantTag: "gte"},
		{name: "zero speed", modify: func(u *models.SessionUpdate) { u.SpeedWPM = 0 }, wantField: "speed_wpm", wantTag: "gt"},
		{name: "missing user", modify: func(u *models.SessionUpdate) { u.UserID = 0 }, wantField: "user_id", wantTag: "gt"},
		{name: "negative position", modify: func(u *models.SessionUpdate) { u.Position = -1 }, wantField: "position", wantTag: "gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u := validUpdate()
			if tt.modify != nil {
				tt.modify(&u)
			}

			err := ValidateStruct(&u)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() error = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("len(Errors()) = %d, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error = (%s, %s), want (%s, %s)", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	t.Parallel()

	u := validUpdate()
	u.Progress = 140
	err := ValidateStruct(&u)
	if err == nil {
		t.Fatal("expected error")
	}
	if got, want := err.Error(), "progress must be less than or equal to 100"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidateStruct_Document(t *testing.T) {
	t.Parallel()

	doc := models.Document{ID: 1, Status: "archived", ReadingMode: models.ModeDirect}
	err := ValidateStruct(&doc)
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	if !strings.Contains(err.Error(), "status must be one of") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidateStruct_Similarity(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&models.DocumentSimilarity{DocumentA: 3, DocumentB: 3, Score: 0.4})
	if err == nil {
		t.Fatal("expected error for a self pair")
	}
	if err.Errors()[0].Tag() != "nefield" {
		t.Errorf("Tag() = %q, want nefield", err.Errors()[0].Tag())
	}
}

func TestValidateStruct_ProfileUpdateDive(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&models.ProfileUpdate{Interests: []string{"ok", ""}})
	if err == nil {
		t.Fatal("expected error for blank interest")
	}
	if got := err.Errors()[0].Field(); got != "interests[1]" {
		t.Errorf("Field() = %q, want interests[1]", got)
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	t.Run("single error", func(t *testing.T) {
		t.Parallel()
		u := validUpdate()
		u.SpeedWPM = -1
		apiErr := ValidateStruct(&u).ToAPIError()
		if apiErr.Code != ErrorCode {
			t.Errorf("Code = %q", apiErr.Code)
		}
		if apiErr.Details["field"] != "speed_wpm" {
			t.Errorf("Details = %v", apiErr.Details)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		t.Parallel()
		apiErr := ValidateStruct(&models.SessionUpdate{}).ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 3 {
			t.Fatalf("Details = %v, want 3 fields (user_id, document_id, speed_wpm)", apiErr.Details)
		}
		if !strings.Contains(apiErr.Message, "; ") {
			t.Errorf("Message = %q, want joined messages", apiErr.Message)
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		apiErr := (&RequestValidationError{}).ToAPIError()
		if apiErr.Message != "Validation failed" {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})
}
