package cmd

type Config struct {
	HTTPPort             string
	DBHost               string
	DBPort               string
	DBUser               string
	DBPassword           string
	DBName               string
	DBSslMode            string
	ShiprocketBaseURL    string
	ShiprocketEmail      string
	ShiprocketPassword   string
	NotifyRelayURL       string
	TrackingPollSchedule string
	CarrierPaceInterval  string
}
