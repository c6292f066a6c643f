package repo

import "context"

// Repositories is the read-only fetch surface the reindexer consumes.
// Implementations return all records of a type in natural order.
type Repositories interface {
	Accounts(ctx context.Context) ([]Account, error)
	Addresses(ctx context.Context) ([]Address, error)
	AudioDevices(ctx context.Context) ([]AudioDevice, error)
	Cities(ctx context.Context) ([]City, error)
	Clients(ctx context.Context) ([]Client, error)
	Countries(ctx context.Context) ([]Country, error)
	DeploymentVariants(ctx context.Context) ([]DeploymentVariant, error)
	InstalledSoftware(ctx context.Context) ([]InstalledSoftware, error)
	PhoneIntegrations(ctx context.Context) ([]PhoneIntegration, error)
	Projects(ctx context.Context) ([]Project, error)
	Radios(ctx context.Context) ([]Radio, error)
	Servers(ctx context.Context) ([]Server, error)
	ServiceContracts(ctx context.Context) ([]ServiceContract, error)
	Sites(ctx context.Context) ([]Site, error)
	Software(ctx context.Context) ([]Software, error)
	UpgradePlans(ctx context.Context) ([]UpgradePlan, error)

	Close() error
}
