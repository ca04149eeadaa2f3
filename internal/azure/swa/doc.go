// Package swa provisions a deployment service principal for Azure Static Web Apps.
//
// The command reuses or creates a deployer service principal, grants it the
// Contributor role at resource-group scope, and can optionally create a
// Free-sku Static Web App for the deployment target.
package swa
