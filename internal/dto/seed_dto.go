package dto

// SeedRequest authorizes a demo-data seeding run.
type SeedRequest struct {
	Token string `json:"token" validate:"required"`
}

// SeedSummary reports how many rows a seeding run created.
type SeedSummary struct {
	Admins      int `json:"admins"`
	Teachers    int `json:"teachers"`
	Students    int `json:"students"`
	Classes     int `json:"classes"`
	Attendances int `json:"attendances"`
}
