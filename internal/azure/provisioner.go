package azure

import (
	"context"
	"errors"
	"strings"
)

const provisionerClientMissingMessageConstant = "service principal client not configured"

// ErrServicePrincipalClientNotConfigured indicates the provisioner was built without a client.
var ErrServicePrincipalClientNotConfigured = errors.New(provisionerClientMissingMessageConstant)

// ServicePrincipalClient enumerates the client operations provisioning depends on.
type ServicePrincipalClient interface {
	LookupServicePrincipal(executionContext context.Context, displayName string) (ServicePrincipal, bool, error)
	CreateServicePrincipal(executionContext context.Context, displayName string) (CreatedServicePrincipal, error)
	ResetClientSecret(executionContext context.Context, clientIdentifier string) (string, error)
}

// ProvisionedServicePrincipal describes the outcome of EnsureServicePrincipal.
type ProvisionedServicePrincipal struct {
	DisplayName      string
	ClientIdentifier string
	ClientSecret     string
	TenantIdentifier string
	ObjectIdentifier string
	Reused           bool
}

// ServicePrincipalProvisioner reuses or creates service principals by display name.
type ServicePrincipalProvisioner struct {
	servicePrincipalClient ServicePrincipalClient
}

// NewServicePrincipalProvisioner constructs a provisioner backed by the provided client.
func NewServicePrincipalProvisioner(servicePrincipalClient ServicePrincipalClient) (*ServicePrincipalProvisioner, error) {
	if servicePrincipalClient == nil {
		return nil, ErrServicePrincipalClientNotConfigured
	}
	return &ServicePrincipalProvisioner{servicePrincipalClient: servicePrincipalClient}, nil
}

// EnsureServicePrincipal reuses an existing service principal with a reset secret or creates a new one.
func (provisioner *ServicePrincipalProvisioner) EnsureServicePrincipal(executionContext context.Context, displayName string) (ProvisionedServicePrincipal, error) {
	trimmedDisplayName := strings.TrimSpace(displayName)
	if len(trimmedDisplayName) == 0 {
		return ProvisionedServicePrincipal{}, ErrDisplayNameRequired
	}

	existingServicePrincipal, found, lookupError := provisioner.servicePrincipalClient.LookupServicePrincipal(executionContext, trimmedDisplayName)
	if lookupError != nil {
		return ProvisionedServicePrincipal{}, lookupError
	}

	if found {
		clientSecret, resetError := provisioner.servicePrincipalClient.ResetClientSecret(executionContext, existingServicePrincipal.ClientIdentifier)
		if resetError != nil {
			return ProvisionedServicePrincipal{}, resetError
		}
		return ProvisionedServicePrincipal{
			DisplayName:      trimmedDisplayName,
			ClientIdentifier: existingServicePrincipal.ClientIdentifier,
			ClientSecret:     clientSecret,
			TenantIdentifier: existingServicePrincipal.TenantIdentifier,
			ObjectIdentifier: existingServicePrincipal.ObjectIdentifier,
			Reused:           true,
		}, nil
	}

	createdServicePrincipal, creationError := provisioner.servicePrincipalClient.CreateServicePrincipal(executionContext, trimmedDisplayName)
	if creationError != nil {
		return ProvisionedServicePrincipal{}, creationError
	}

	return ProvisionedServicePrincipal{
		DisplayName:      trimmedDisplayName,
		ClientIdentifier: createdServicePrincipal.ClientIdentifier,
		ClientSecret:     createdServicePrincipal.ClientSecret,
		TenantIdentifier: createdServicePrincipal.TenantIdentifier,
		ObjectIdentifier: createdServicePrincipal.ObjectIdentifier,
		Reused:           false,
	}, nil
}
