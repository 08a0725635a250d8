package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phoneid/phoneid/internal/apperr"
)

const (
	codeLength         = 4
	providerOKStatus   = "0"
	defaultHTTPTimeout = 10 * time.Second
)

// LiveConfig carries the credentials and endpoints for the live provider.
type LiveConfig struct {
	// VerifyURL is the base URL of the provider's verify API (remote flow).
	VerifyURL string
	// SMSURL is the base URL of the provider's messaging API (SMS flow).
	SMSURL    string
	APIKey    string
	APISecret string
	From      string
	Brand     string
}

// LiveProvider talks to a Nexmo-style verification and messaging API.
// Network faults surface as provider errors; a response the provider itself
// marks unsuccessful surfaces as a verification failure instead, so callers
// can distinguish retryable faults from rejected codes.
type LiveProvider struct {
	cfg    LiveConfig
	client *http.Client
}

// NewLiveProvider builds the live adapter variant with a bounded HTTP client.
func NewLiveProvider(cfg LiveConfig, client *http.Client) *LiveProvider {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if cfg.Brand == "" {
		cfg.Brand = cfg.From
	}
	return &LiveProvider{cfg: cfg, client: client}
}

type verifyResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	ErrorText string `json:"error_text"`
}

type smsResponse struct {
	Messages []struct {
		Status    string `json:"status"`
		ErrorText string `json:"error-text"`
	} `json:"messages"`
}

// RequestCode starts a remote verification and returns the provider request id.
func (p *LiveProvider) RequestCode(ctx context.Context, number string) (string, error) {
	q := url.Values{
		"api_key":     {p.cfg.APIKey},
		"api_secret":  {p.cfg.APISecret},
		"number":      {number},
		"brand":       {p.cfg.Brand},
		"code_length": {fmt.Sprint(codeLength)},
	}
	var out verifyResponse
	if err := p.getJSON(ctx, p.cfg.VerifyURL+"/verify/json", q, &out); err != nil {
		return "", err
	}
	if out.Status != providerOKStatus || out.RequestID == "" {
		return "", apperr.Newf(apperr.KindVerificationFailed, "provider rejected verification request: %s", out.ErrorText)
	}
	return out.RequestID, nil
}

// CheckCode asks the provider to validate a code for a pending request.
func (p *LiveProvider) CheckCode(ctx context.Context, requestID, code string) error {
	q := url.Values{
		"api_key":    {p.cfg.APIKey},
		"api_secret": {p.cfg.APISecret},
		"request_id": {requestID},
		"code":       {code},
	}
	var out verifyResponse
	if err := p.getJSON(ctx, p.cfg.VerifyURL+"/verify/check/json", q, &out); err != nil {
		return err
	}
	if out.Status != providerOKStatus {
		return apperr.Newf(apperr.KindVerificationFailed, "provider rejected code: %s", out.ErrorText)
	}
	return nil
}

// SendCode delivers a locally generated code through the SMS API.
func (p *LiveProvider) SendCode(ctx context.Context, number, code string) error {
	form := url.Values{
		"from":       {p.cfg.From},
		"to":         {number},
		"text":       {fmt.Sprintf("Your %s verification code is %s", p.cfg.From, code)},
		"api_key":    {p.cfg.APIKey},
		"api_secret": {p.cfg.APISecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.SMSURL+"/sms/json", strings.NewReader(form.Encode()))
	if err != nil {
		return apperr.Wrap(apperr.KindProvider, "build sms request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindProvider, "send sms", err)
	}
	defer resp.Body.Close()

	var out smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return apperr.Wrap(apperr.KindProvider, "decode sms response", err)
	}
	if len(out.Messages) != 1 || out.Messages[0].Status != providerOKStatus {
		detail := "unexpected response"
		if len(out.Messages) == 1 {
			detail = out.Messages[0].ErrorText
		}
		return apperr.Newf(apperr.KindVerificationFailed, "provider rejected sms: %s", detail)
	}
	return nil
}

func (p *LiveProvider) getJSON(ctx context.Context, endpoint string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return apperr.Wrap(apperr.KindProvider, "build provider request", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindProvider, "call provider", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindProvider, "decode provider response", err)
	}
	return nil
}
