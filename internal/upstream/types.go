package upstream

import (
	"github.com/plataa/triagedash/internal/records"
	"github.com/plataa/triagedash/internal/session"
)

// SpecialistPayload mirrors GET /api/v1/tests/especialista/dashboard.
type SpecialistPayload struct {
	Totals  map[string]int            `json:"totais_por_risco"`
	Records []records.ScreeningRecord `json:"pacientes"`
}

// ResultPayload is one finished questionnaire of a patient.
type ResultPayload struct {
	TestType string   `json:"teste_tipo"`
	Date     string   `json:"data"`
	Risk     string   `json:"risco"`
	Score    *float64 `json:"score,omitempty"`
	Note     string   `json:"orientacao,omitempty"`
}

// PatientPayload mirrors one entry of GET /api/v1/tests/responsavel/resultados.
type PatientPayload struct {
	Name    string          `json:"nome"`
	CPF     string          `json:"cpf"`
	Region  string          `json:"regiao_bairro"`
	Results []ResultPayload `json:"resultados"`
}

// RegionStat mirrors one row of GET /api/v1/ibge/autism-indigenous.
type RegionStat struct {
	Location         string  `json:"location"`
	Population       int64   `json:"indigenous_population"`
	AutismCount      int64   `json:"autism_count"`
	AutismPercentage float64 `json:"autism_percentage"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the successful login reply.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type,omitempty"`
	Profile     session.Profile `json:"profile"`
}

// StudentRaceRow mirrors one row of GET /api/v1/ibge/students-autism-by-race.
// Cells the source left as "-" arrive as null.
type StudentRaceRow struct {
	Location     string   `json:"location"`
	WhiteTotal   *float64 `json:"branca_total"`
	WhiteAutism  *float64 `json:"aut_branca_total"`
	BlackTotal   *float64 `json:"preta_total"`
	BlackAutism  *float64 `json:"aut_preta_total"`
	YellowTotal  *float64 `json:"amarela_total"`
	YellowAutism *float64 `json:"aut_amarela_total"`
	BrownTotal   *float64 `json:"parda_total"`
	BrownAutism  *float64 `json:"aut_parda_total"`
}
