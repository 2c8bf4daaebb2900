package address

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/identity"
	"marcenaria_mdf/internal/usecase/interfaces"
)

const defaultViaCEPBaseURL = "https://viacep.com.br/ws"

// ViaCEPClient resolves Brazilian postal codes.
type ViaCEPClient struct {
	baseURL string
	client  *http.Client
}

var _ interfaces.IAddressLookup = (*ViaCEPClient)(nil)

func NewViaCEPClient(baseURL string, timeout time.Duration) *ViaCEPClient {
	if baseURL == "" {
		baseURL = defaultViaCEPBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ViaCEPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type viaCEPResponse struct {
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
	// ViaCEP answers 200 with {"erro": true} for unknown codes; some
	// deployments send the string "true".
	Erro any `json:"erro,omitempty"`
}

// Lookup returns an empty Address for unknown codes.
func (c *ViaCEPClient) Lookup(ctx context.Context, postalCode string) (entities.Address, error) {
	cep := identity.OnlyDigits(postalCode)
	if len(cep) != 8 {
		return entities.Address{}, fmt.Errorf("viacep: invalid postal code %q", postalCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", c.baseURL, cep), nil)
	if err != nil {
		return entities.Address{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[address][viacep] request failed cep=%s err=%v", cep, err)
		return entities.Address{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return entities.Address{}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return entities.Address{}, fmt.Errorf("viacep: status %d", resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return entities.Address{}, fmt.Errorf("viacep: decode: %w", err)
	}
	if body.Erro != nil && body.Erro != false && body.Erro != "false" {
		log.Printf("[address][viacep] unknown cep=%s", cep)
		return entities.Address{}, nil
	}

	return entities.Address{
		PostalCode:   cep,
		Street:       body.Logradouro,
		Complement:   body.Complemento,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}, nil
}
