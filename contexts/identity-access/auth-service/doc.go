// Package authservice owns accounts and API credentials: registration,
// password login, JWT access/refresh issuance, refresh-token revocation on
// logout, and profile reads. Other modules receive only the verified user id
// resolved by the HTTP middleware.
package authservice
