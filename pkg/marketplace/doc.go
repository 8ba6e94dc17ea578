// Package marketplace is the HTTP client for the catalog, users, inventory,
// economy and web services of the marketplace.
//
// Every request carries the identity credential as a cookie. Status codes
// are mapped to typed errors from freegrab/pkg/errors, except for purchase
// calls whose bodies are always decoded so rejection codes reach the caller.
package marketplace
