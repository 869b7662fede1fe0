// Package google provides shared infrastructure for the Google API
// connectors.
//
// This package contains common utilities used by the calendar and docs
// connectors including:
//   - Token source construction from application-default credentials or
//     an installed-app credentials/token file pair
//   - Service factories for creating Google API clients
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
// Each connector uses this package to create authenticated API clients:
//
//	ts, err := google.NewTokenSource(ctx, credentialsFile, tokenFile)
//	svc, err := google.NewCalendarService(ctx, ts)
//
// # OAuth2 Scopes
//
// The connectors use read-only scopes:
//   - https://www.googleapis.com/auth/calendar.readonly
//   - https://www.googleapis.com/auth/drive.readonly
//   - https://www.googleapis.com/auth/documents.readonly
package google
