package repo

import "context"

// Static serves fixed record sets from memory. Used for development
// seeding and as a test fixture.
type Static struct {
	AccountList           []Account
	AddressList           []Address
	AudioDeviceList       []AudioDevice
	CityList              []City
	ClientList            []Client
	CountryList           []Country
	DeploymentVariantList []DeploymentVariant
	InstalledSoftwareList []InstalledSoftware
	PhoneIntegrationList  []PhoneIntegration
	ProjectList           []Project
	RadioList             []Radio
	ServerList            []Server
	ServiceContractList   []ServiceContract
	SiteList              []Site
	SoftwareList          []Software
	UpgradePlanList       []UpgradePlan
}

func (s *Static) Accounts(context.Context) ([]Account, error) { return s.AccountList, nil }
func (s *Static) Addresses(context.Context) ([]Address, error) {
	return s.AddressList, nil
}
func (s *Static) AudioDevices(context.Context) ([]AudioDevice, error) {
	return s.AudioDeviceList, nil
}
func (s *Static) Cities(context.Context) ([]City, error)       { return s.CityList, nil }
func (s *Static) Clients(context.Context) ([]Client, error)    { return s.ClientList, nil }
func (s *Static) Countries(context.Context) ([]Country, error) { return s.CountryList, nil }
func (s *Static) DeploymentVariants(context.Context) ([]DeploymentVariant, error) {
	return s.DeploymentVariantList, nil
}
func (s *Static) InstalledSoftware(context.Context) ([]InstalledSoftware, error) {
	return s.InstalledSoftwareList, nil
}
func (s *Static) PhoneIntegrations(context.Context) ([]PhoneIntegration, error) {
	return s.PhoneIntegrationList, nil
}
func (s *Static) Projects(context.Context) ([]Project, error) { return s.ProjectList, nil }
func (s *Static) Radios(context.Context) ([]Radio, error)     { return s.RadioList, nil }
func (s *Static) Servers(context.Context) ([]Server, error)   { return s.ServerList, nil }
func (s *Static) ServiceContracts(context.Context) ([]ServiceContract, error) {
	return s.ServiceContractList, nil
}
func (s *Static) Sites(context.Context) ([]Site, error)       { return s.SiteList, nil }
func (s *Static) Software(context.Context) ([]Software, error) { return s.SoftwareList, nil }
func (s *Static) UpgradePlans(context.Context) ([]UpgradePlan, error) {
	return s.UpgradePlanList, nil
}
func (s *Static) Close() error { return nil }

var _ Repositories = (*Static)(nil)
