// Package keyvault provisions a service principal with Key Vault secret access.
//
// The command reuses or creates a service principal named after a repository
// and grants it the Key Vault Secrets User role either on the whole vault or
// on every secret matching a name prefix.
package keyvault
