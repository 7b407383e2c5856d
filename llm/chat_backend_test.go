package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/jledbetter-dev/stagepilot/media"
)

func newExtractionSynthesizer() *ChatSynthesizer {
	return NewChatSynthesizer(nil, "test-model", media.NewPreprocessor(nil, nil, 0))
}

func responseWithParts(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: parts},
		}},
	}
}

func TestFirstImageReadsInlineData(t *testing.T) {
	s := newExtractionSynthesizer()

	resp := responseWithParts(
		genai.NewPartFromText("here is the staged room"),
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("inline-image-bytes")}},
	)

	data, err := s.firstImage(context.Background(), resp)
	require.NoError(t, err)
	assert.Equal(t, []byte("inline-image-bytes"), data)
}

func TestFirstImageDownloadsFileURI(t *testing.T) {
	payload := []byte("generated-jpeg-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	s := newExtractionSynthesizer()
	resp := responseWithParts(
		genai.NewPartFromText("rendered output follows"),
		&genai.Part{FileData: &genai.FileData{MIMEType: "image/jpeg", FileURI: srv.URL + "/result.jpg"}},
	)

	data, err := s.firstImage(context.Background(), resp)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFirstImageErrsWithoutImagePart(t *testing.T) {
	s := newExtractionSynthesizer()
	resp := responseWithParts(genai.NewPartFromText("no image, only words"))

	_, err := s.firstImage(context.Background(), resp)
	require.Error(t, err)
}
