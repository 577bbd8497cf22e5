// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package validation provides struct validation using go-playground/validator v10.

A process-wide validator is created once and caches struct metadata. Field
names in errors are taken from `json` tags so messages match the request
bodies clients send:

	err := validation.ValidateStruct(&models.SessionUpdate{Progress: 140})
	// err.Error() == "user_id must be greater than 0; document_id must be ..."

Every failure is returned as *RequestValidationError. ToAPIError converts it
into the VALIDATION_ERROR shape used by the HTTP envelope.
*/
package validation
