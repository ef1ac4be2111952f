package summary

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/domain/notice"
)

const maxPayloadNotices = 20

// payloadNotice is the projection of a notice sent to the model.
// Field order is fixed and determines the cache key.
type payloadNotice struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Type          *string  `json:"type"`
	Side          *string  `json:"side"`
	MainCategory  *string  `json:"main_category"`
	SubCategories []string `json:"sub_categories"`
}

type signature struct {
	Town          string          `json:"town"`
	Model         string          `json:"model"`
	PromptVersion string          `json:"prompt_version"`
	Payload       []payloadNotice `json:"payload"`
}

func buildPayload(notices []notice.Notice) []payloadNotice {
	if len(notices) > maxPayloadNotices {
		notices = notices[:maxPayloadNotices]
	}
	out := make([]payloadNotice, 0, len(notices))
	for _, n := range notices {
		subs := make([]string, 0, len(n.SubCategories))
		for _, s := range n.SubCategories {
			if s != "" {
				subs = append(subs, s)
			}
		}
		out = append(out, payloadNotice{
			Title:         optional(n.Title),
			Description:   optional(n.Description),
			Type:          optional(n.Type),
			Side:          optional(n.Side),
			MainCategory:  n.MainCategory,
			SubCategories: subs,
		})
	}
	return out
}

// optional maps an absent field to JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// cacheKey hashes the normalized town, model, prompt version and payload.
func cacheKey(town, model, promptVersion string, payload []payloadNotice) (string, error) {
	data, err := marshal(signature{
		Town:          strings.ToLower(strings.TrimSpace(town)),
		Model:         model,
		PromptVersion: promptVersion,
		Payload:       payload,
	}, "")
	if err != nil {
		return "", fmt.Errorf("marshal summary signature: %w", err)
	}
	sum := sha256.Sum256(data)
	return domain.KeyPrefix + "summary:" + hex.EncodeToString(sum[:]), nil
}

// marshal encodes v without HTML escaping; a non-empty indent pretty-prints.
func marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
