package mocks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
)

const (
	PlatformToken    = "e2e-token"
	PlatformPassword = "secret"
)

// BrazilGeoJSON holds two simplified states.
const BrazilGeoJSON = `{"type": "FeatureCollection", "features": [
	{"type": "Feature", "properties": {"name": "São Paulo"},
	 "geometry": {"type": "Polygon", "coordinates": [[[-53,-20],[-44,-20],[-44,-25],[-53,-20]]]}},
	{"type": "Feature", "properties": {"name": "Acre"},
	 "geometry": {"type": "Polygon", "coordinates": [[[-73,-7],[-66,-9],[-72,-11],[-73,-7]]]}}
]}`

// Platform is a fake screening platform serving every endpoint the
// dashboard calls.
type Platform struct {
	Server *httptest.Server

	FailDashboard atomic.Bool
	DashboardHits atomic.Int32
	GeoHits       atomic.Int32
	Contacts      atomic.Int32
}

func NewPlatform() *Platform {
	p := &Platform{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", p.login)
	mux.HandleFunc("GET /api/v1/tests/especialista/dashboard", p.authed(p.dashboard))
	mux.HandleFunc("GET /api/v1/tests/responsavel/resultados", p.authed(p.results))
	mux.HandleFunc("GET /api/v1/ibge/autism-indigenous", p.authed(p.regionStats))
	mux.HandleFunc("GET /api/v1/ibge/students-autism-by-race", p.authed(p.studentsByRace))
	mux.HandleFunc("POST /api/v1/contact/send", p.contact)
	mux.HandleFunc("GET /geo/brazil-states.geojson", func(w http.ResponseWriter, r *http.Request) {
		p.GeoHits.Add(1)
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(BrazilGeoJSON))
	})
	p.Server = httptest.NewServer(mux)
	return p
}

func (p *Platform) URL() string { return p.Server.URL }

func (p *Platform) GeoURL() string { return p.Server.URL + "/geo/brazil-states.geojson" }

func (p *Platform) Close() { p.Server.Close() }

func (p *Platform) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+PlatformToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
			return
		}
		next(w, r)
	}
}

func (p *Platform) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Password != PlatformPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": PlatformToken,
		"token_type":   "bearer",
		"profile":      map[string]any{"id": 7, "nome": "Dra. Ana", "email": body.Email, "role": "especialista"},
	})
}

func (p *Platform) dashboard(w http.ResponseWriter, r *http.Request) {
	p.DashboardHits.Add(1)
	if p.FailDashboard.Load() {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "database offline"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totais_por_risco": map[string]int{"Alto": 3, "Moderado": 1, "Baixo": 1},
		"pacientes": []map[string]any{
			{"nome": "João", "risco": "Alto", "faixa_etaria": "0-3", "regiao_bairro": "Centro", "data": "2024-03-01T10:00:00", "teste": "mchat"},
			{"nome": "Maria", "risco": "Alto", "faixa_etaria": "4-6", "regiao_bairro": "Centro", "data": "2024-03-01", "teste": "mchat"},
			{"nome": "Pedro", "risco": "Moderado", "faixa_etaria": "0-3", "regiao_bairro": "Norte", "data": "2024-03-02", "teste": "qchat"},
			{"nome": "Ana", "risco": "Baixo", "faixa_etaria": "4-6", "regiao_bairro": "Sul", "data": "2024-03-03", "teste": "mchat"},
			{"Nome": "Lucas", "Risco": "alto", "faixaEtaria": "7-10", "region": "Norte", "date": "2024-03-03", "teste": "mchat"},
		},
	})
}

func (p *Platform) results(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"pacientes": []map[string]any{{
			"nome":          "Lia",
			"cpf":           "000.000.000-00",
			"regiao_bairro": "Centro",
			"resultados": []map[string]any{
				{"teste_tipo": "mchat", "data": "2024-03-01", "risco": "Alto", "score": 12},
			},
		}},
	})
}

func (p *Platform) regionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]any{
		{"location": "São Paulo", "indigenous_population": 1000, "autism_count": 25, "autism_percentage": 2.5},
		{"location": "Acre", "indigenous_population": 500, "autism_count": 5, "autism_percentage": 1.0},
		{"location": "Fonte: IBGE, Censo 2022", "indigenous_population": 0, "autism_count": 0, "autism_percentage": 0},
	})
}

func (p *Platform) studentsByRace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]any{{
		"location":     "Brasil",
		"branca_total": 100, "aut_branca_total": 3,
		"preta_total": 50, "aut_preta_total": 1,
		"amarela_total": nil, "aut_amarela_total": nil,
		"parda_total": 120, "aut_parda_total": 4,
	}})
}

func (p *Platform) contact(w http.ResponseWriter, r *http.Request) {
	p.Contacts.Add(1)
	writeJSON(w, http.StatusOK, map[string]any{"message": "sent"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
