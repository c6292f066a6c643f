// Package repo supplies read-only access to the relational
// system-of-record entities that feed the search index.
package repo

// Account is a customer account.
type Account struct {
	ID     string
	Name   string
	Number string
	Status string
}

// Address is a postal address attached to an account or site.
type Address struct {
	ID      string
	Street  string
	ZipCode string
	City    string
	Country string
}

// AudioDevice is a deployed audio endpoint.
type AudioDevice struct {
	ID           string
	Name         string
	Model        string
	SerialNumber string
	Status       string
}

// City is a geographic reference record.
type City struct {
	ID     string
	Name   string
	Region string
}

// Client is an installed client application instance.
type Client struct {
	ID      string
	Name    string
	Version string
	Status  string
	Active  bool
}

// Country is a geographic reference record.
type Country struct {
	ID   string
	Name string
	Code string
}

// DeploymentVariant describes a supported deployment configuration.
type DeploymentVariant struct {
	ID          string
	Name        string
	Description string
}

// InstalledSoftware is a software package installed on a server.
type InstalledSoftware struct {
	ID      string
	Name    string
	Version string
	Status  string
}

// PhoneIntegration is a telephony integration endpoint.
type PhoneIntegration struct {
	ID     string
	Name   string
	Vendor string
	Status string
}

// Project is a customer project.
type Project struct {
	ID     string
	Name   string
	Number string
	Status string
}

// Radio is a deployed radio device.
type Radio struct {
	ID           string
	Name         string
	SerialNumber string
	Status       string
	FireZone     string
}

// Server is a managed host.
type Server struct {
	ID        string
	Hostname  string
	IPAddress string
	OS        string
	Status    string
}

// ServiceContract is a support contract.
type ServiceContract struct {
	ID     string
	Number string
	Type   string
	Status string
}

// Site is a physical customer location.
type Site struct {
	ID          string
	Name        string
	Description string
	FireZone    string
}

// Software is a software product in the catalog.
type Software struct {
	ID      string
	Name    string
	Version string
	Status  string
}

// UpgradePlan is a planned software upgrade.
type UpgradePlan struct {
	ID            string
	Name          string
	TargetVersion string
	Status        string
}
