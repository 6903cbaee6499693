// Package telemetry implementa o cliente do provedor de telemetria veicular.
//
// A API do provedor é frouxamente tipada: o nome de cada campo varia por
// instalação/localidade (ex.: razão social em "nome_razao_social", "nome" ou
// "razao_social"). Em vez de duck-typing dinâmico, cada campo lógico tem uma
// lista ordenada de chaves candidatas resolvida uma única vez por registro na
// fronteira, produzindo um registro interno fortemente tipado.
package telemetry

import (
	"math"
	"strconv"
	"strings"
)

// CustomerRecord registro de cliente já resolvido na fronteira.
// ExternalID vazio significa registro sem identidade — não pode ser
// deduplicado e deve ser descartado (contado como skipped) pelo job.
type CustomerRecord struct {
	ExternalID string
	Name       string
	TaxID      string // cru, com máscara; normalização é do job
	Email      string
	Phone      string
	Address    string
	Kind       string // cru: "F"/"fisica", "J"/"juridica", vazio...
}

// VehicleRecord registro de veículo/rastreador já resolvido na fronteira.
type VehicleRecord struct {
	ProviderID   string
	Plate        string
	Brand        string
	Model        string
	TrackerIMEI  string
	TrackerModel string
	StatusCode   int   // 1 = disponível; qualquer outro = indisponível
	Odometer     int64 // o provedor manda número ou string "1500.0"
	Latitude     float64
	Longitude    float64
	HasPosition  bool
}

// Position posição pontual de um veículo (GET /vehicle/{id}).
type Position struct {
	Latitude  float64
	Longitude float64
}

// Chaves candidatas por campo lógico, em ordem de preferência.
var (
	customerIDKeys      = []string{"id", "id_cliente", "codigo", "codigo_cliente"}
	customerNameKeys    = []string{"nome_razao_social", "nome", "razao_social"}
	customerTaxIDKeys   = []string{"cpf_cnpj", "cnpj_cpf", "cpf", "cnpj", "documento"}
	customerEmailKeys   = []string{"email", "e_mail"}
	customerPhoneKeys   = []string{"telefone", "celular", "fone"}
	customerAddressKeys = []string{"endereco", "logradouro"}
	customerKindKeys    = []string{"tipo_pessoa", "tipo"}

	vehicleIDKeys         = []string{"id", "id_veiculo", "codigo"}
	vehiclePlateKeys      = []string{"placa", "plate"}
	vehicleBrandKeys      = []string{"marca", "brand"}
	vehicleModelKeys      = []string{"modelo", "model"}
	vehicleIMEIKeys       = []string{"imei", "imei_rastreador", "tracker_imei"}
	vehicleTrackerKeys    = []string{"modelo_rastreador", "rastreador", "tracker_model"}
	vehicleStatusKeys     = []string{"status_veiculo", "status"}
	vehicleOdometerKeys   = []string{"odometer", "odometro", "hodometro", "km"}
	positionLatitudeKeys  = []string{"latitude", "lat"}
	positionLongitudeKeys = []string{"longitude", "lng", "lon"}
	tokenKeys             = []string{"token", "access_token"}
)

// DecodeCustomer resolve um registro cru de cliente do provedor.
func DecodeCustomer(m map[string]any) CustomerRecord {
	return CustomerRecord{
		ExternalID: firstString(m, customerIDKeys...),
		Name:       firstString(m, customerNameKeys...),
		TaxID:      firstString(m, customerTaxIDKeys...),
		Email:      firstString(m, customerEmailKeys...),
		Phone:      firstString(m, customerPhoneKeys...),
		Address:    firstString(m, customerAddressKeys...),
		Kind:       firstString(m, customerKindKeys...),
	}
}

// DecodeVehicle resolve um registro cru de veículo do provedor.
func DecodeVehicle(m map[string]any) VehicleRecord {
	lat, okLat := firstFloat(m, positionLatitudeKeys...)
	lon, okLon := firstFloat(m, positionLongitudeKeys...)
	return VehicleRecord{
		ProviderID:   firstString(m, vehicleIDKeys...),
		Plate:        strings.ToUpper(strings.TrimSpace(firstString(m, vehiclePlateKeys...))),
		Brand:        firstString(m, vehicleBrandKeys...),
		Model:        firstString(m, vehicleModelKeys...),
		TrackerIMEI:  firstString(m, vehicleIMEIKeys...),
		TrackerModel: firstString(m, vehicleTrackerKeys...),
		StatusCode:   firstInt(m, vehicleStatusKeys...),
		Odometer:     odometerValue(m),
		Latitude:     lat,
		Longitude:    lon,
		HasPosition:  okLat && okLon,
	}
}

// odometerValue normaliza o hodômetro para km inteiros, truncando a fração.
// "1500.0" -> 1500; valores não numéricos viram 0.
func odometerValue(m map[string]any) int64 {
	f, ok := firstFloat(m, vehicleOdometerKeys...)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}

// firstString devolve o primeiro valor não vazio entre as chaves candidatas.
// Números JSON viram string sem fração ("42.0" -> "42") porque o provedor
// alterna id numérico e id string entre instalações.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	return ""
}

// firstFloat devolve o primeiro valor numérico (número ou string numérica).
func firstFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// firstInt como firstFloat, truncado para int.
func firstInt(m map[string]any, keys ...string) int {
	f, ok := firstFloat(m, keys...)
	if !ok {
		return 0
	}
	return int(f)
}
