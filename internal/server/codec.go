package server

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/goliatone/go-kafkaforms/pkg/pngcodec"
)

// encodeRequest carries base64 content. UseGZIP defaults to true.
type encodeRequest struct {
	Width   *int   `json:"width"`
	Height  *int   `json:"height"`
	Content string `json:"content"`
	UseGZIP *bool  `json:"useGZIP"`
}

type decodeRequest struct {
	Content string `json:"content"`
	UseGZIP *bool  `json:"useGZIP"`
}

func useGZIP(flag *bool) bool {
	return flag == nil || *flag
}

func decodeContent(content string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: content is not valid base64: %v", errBadRequest, err)
	}
	return raw, nil
}

func (s *Server) encodePNG(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if err := bind(r, &req); err != nil {
		writeError(w, err)
		return
	}
	content, err := decodeContent(req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	image, err := pngcodec.Encode(content, pngcodec.Options{
		Width:  req.Width,
		Height: req.Height,
		GZIP:   useGZIP(req.UseGZIP),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, base64.StdEncoding.EncodeToString(image))
}

func (s *Server) decodePNG(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := bind(r, &req); err != nil {
		writeError(w, err)
		return
	}
	content, err := decodeContent(req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := pngcodec.Decode(content, useGZIP(req.UseGZIP))
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, base64.StdEncoding.EncodeToString(data))
}
