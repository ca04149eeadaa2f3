// Package azure wraps the az CLI for service-principal provisioning.
//
// Client issues individual az invocations through the shared shell executor
// and decodes their JSON or TSV payloads. ServicePrincipalProvisioner layers
// the reuse-or-create workflow on top: an existing service principal is
// reused with a freshly reset client secret while a missing one is created
// without role assignments. Role assignments and resource creation stay with
// the command-specific services in the subpackages.
package azure
