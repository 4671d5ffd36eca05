package dto

type StatusOutput struct {
	Granted      bool
	Capabilities []string
}
