package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/auroradesk/aurora/internal/domains/command"
	"github.com/auroradesk/aurora/internal/domains/intent"
	"github.com/auroradesk/aurora/pkg/Logger"
	"github.com/auroradesk/aurora/pkg/voice"
)

func streamTestConn(t *testing.T, received chan<- string) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := Logger.New(true)

	voiceSvc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/transcribe" {
			http.NotFound(w, r)
			return
		}
		var body struct {
			AudioData string `json:"audio_data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		received <- body.AudioData
		json.NewEncoder(w).Encode(voice.TranscriptionResult{Text: "open chrome", Confidence: 0.9})
	}))
	t.Cleanup(voiceSvc.Close)

	handler := NewVoiceHandler(
		voice.NewClient(voiceSvc.URL, 5*time.Second, logger),
		intent.New(logger),
		command.New(logger),
		logger,
	)

	engine := gin.New()
	engine.GET("/stream", handler.HandleStream)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial stream socket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStreamFlushJoinsDecodedChunks(t *testing.T) {
	received := make(chan string, 1)
	conn := streamTestConn(t, received)

	// Odd-length chunks so each base64 payload carries its own padding.
	first := []byte{0x01, 0x02, 0x03, 0x04}
	second := []byte{0x05, 0x06, 0x07, 0x08, 0x09}
	for _, pcm := range [][]byte{first, second} {
		frame := streamFrame{
			Type:       "audio",
			AudioData:  base64.StdEncoding.EncodeToString(pcm),
			SampleRate: 16000,
			Channels:   1,
		}
		if err := conn.WriteJSON(frame); err != nil {
			t.Fatalf("write audio frame: %v", err)
		}
	}
	if err := conn.WriteJSON(streamFrame{Type: "flush"}); err != nil {
		t.Fatalf("write flush frame: %v", err)
	}

	var reply streamReply
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read flush reply: %v", err)
	}
	if reply.Type != "transcription" {
		t.Fatalf("expected transcription reply, got %q (%s)", reply.Type, reply.Error)
	}
	if reply.Transcription == nil || reply.Transcription.Text != "open chrome" {
		t.Errorf("unexpected transcription payload: %+v", reply.Transcription)
	}

	sent := <-received
	decoded, err := base64.StdEncoding.DecodeString(sent)
	if err != nil {
		t.Fatalf("voice service received invalid base64: %v", err)
	}
	want := append(append([]byte{}, first...), second...)
	if !bytes.Equal(decoded, want) {
		t.Errorf("joined audio mismatch: got %v want %v", decoded, want)
	}
}

func TestStreamRejectsInvalidAudioEncoding(t *testing.T) {
	received := make(chan string, 1)
	conn := streamTestConn(t, received)

	frame := streamFrame{Type: "audio", AudioData: "not base64!!", SampleRate: 16000, Channels: 1}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("write audio frame: %v", err)
	}

	var reply streamReply
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.Type != "error" {
		t.Errorf("expected error reply for malformed audio, got %q", reply.Type)
	}
}
