package handlers

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/auroradesk/aurora/internal/domains/command"
	"github.com/auroradesk/aurora/internal/domains/intent"
	"github.com/auroradesk/aurora/pkg/Logger"
	"github.com/auroradesk/aurora/pkg/voice"
	"github.com/auroradesk/aurora/pkg/voice/audioring"
)

const streamBufferSize = 1 << 20 // 1MB of buffered audio per stream

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // dev-only
}

// streamFrame is one JSON message on the voice stream socket.
type streamFrame struct {
	Type       string `json:"type"` // "audio", "flush", "ping"
	AudioData  string `json:"audioData,omitempty"`
	SampleRate int32  `json:"sampleRate,omitempty"`
	Channels   int16  `json:"channels,omitempty"`
}

type streamReply struct {
	Type          string                     `json:"type"` // "transcription", "pong", "error"
	Transcription *voice.TranscriptionResult `json:"transcription,omitempty"`
	Intent        *intent.Result             `json:"intent,omitempty"`
	Error         string                     `json:"error,omitempty"`
}

// VoiceHandler handles voice-related HTTP requests
type VoiceHandler struct {
	client    *voice.Client
	analyzer  *intent.Analyzer
	processor *command.Processor
	logger    *Logger.Logger
}

// NewVoiceHandler creates a new voice handler
func NewVoiceHandler(client *voice.Client, analyzer *intent.Analyzer, processor *command.Processor, logger *Logger.Logger) *VoiceHandler {
	return &VoiceHandler{
		client:    client,
		analyzer:  analyzer,
		processor: processor,
		logger:    logger,
	}
}

// ProcessCommand handles end-to-end voice commands
// @Summary Process a voice command
// @Description Transcribe audio, analyze the intent, and execute system commands directly
// @Tags Voice
// @Accept json
// @Produce json
// @Param request body VoiceCommandRequest true "Voice command audio"
// @Success 200 {object} VoiceCommandResponse "Command result"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 502 {object} ErrorResponse "Voice service unavailable"
// @Router /voice/command [post]
func (h *VoiceHandler) ProcessCommand(c *gin.Context) {
	var req VoiceCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	transcription, err := h.client.Transcribe(c.Request.Context(), req.AudioData, req.Language)
	if err != nil {
		h.logger.Errorf("transcription failed: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Voice service unavailable"})
		return
	}

	intentResult := h.analyzer.Analyze(transcription.Text)
	response := VoiceCommandResponse{
		Transcription: *transcription,
		Intent:        intentResult,
		Confidence:    transcription.Confidence * intentResult.Confidence,
	}

	// System-level intents are executed immediately; everything else is
	// left to the caller to route through /ai/process.
	if h.processor.IsSystemCommand(transcription.Text) && intentResult.Action != "ai_process" {
		result := h.processor.Execute(c.Request.Context(), transcription.Text, intentResult.Parameters)
		response.CommandResult = &result
	}

	c.JSON(http.StatusOK, response)
}

// Transcribe handles speech to text
// @Summary Transcribe audio
// @Tags Voice
// @Accept json
// @Produce json
// @Param request body TranscribeRequest true "Audio to transcribe"
// @Success 200 {object} voice.TranscriptionResult "Transcription"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 502 {object} ErrorResponse "Voice service unavailable"
// @Router /voice/transcribe [post]
func (h *VoiceHandler) Transcribe(c *gin.Context) {
	var req TranscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	result, err := h.client.Transcribe(c.Request.Context(), req.AudioData, req.Language)
	if err != nil {
		h.logger.Errorf("transcription failed: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Voice service unavailable"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Synthesize handles text to speech
// @Summary Synthesize speech
// @Tags Voice
// @Accept json
// @Produce json
// @Param request body SynthesizeRequest true "Text to speak"
// @Success 200 {object} voice.SynthesisResult "Synthesized audio"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 502 {object} ErrorResponse "Voice service unavailable"
// @Router /voice/synthesize [post]
func (h *VoiceHandler) Synthesize(c *gin.Context) {
	var req SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	result, err := h.client.Synthesize(c.Request.Context(), req.Text, req.Voice, req.Speed)
	if err != nil {
		h.logger.Errorf("synthesis failed: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Voice service unavailable"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleStream upgrades to a WebSocket that buffers incoming audio chunks
// and transcribes them on flush.
func (h *VoiceHandler) HandleStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("voice ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ring := audioring.New(streamBufferSize)
	h.logger.Infof("voice stream connected from %s", c.ClientIP())

	for {
		var frame streamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Errorf("voice ws read error: %v", err)
			}
			return
		}

		switch frame.Type {
		case "audio":
			// Chunks are decoded here so flush can re-encode the joined
			// PCM once; concatenating padded base64 strings is invalid.
			decoded, err := base64.StdEncoding.DecodeString(frame.AudioData)
			if err != nil {
				h.writeReply(conn, streamReply{Type: "error", Error: "invalid audio encoding"})
				continue
			}
			chunk := audioring.Chunk{
				Data:       decoded,
				Timestamp:  time.Now(),
				SampleRate: frame.SampleRate,
				Channels:   frame.Channels,
			}
			if err := ring.Push(chunk); err != nil {
				h.logger.Warnf("audio chunk dropped: %v", err)
			}
		case "flush":
			h.flushStream(c, conn, ring)
		case "ping":
			h.writeReply(conn, streamReply{Type: "pong"})
		default:
			h.writeReply(conn, streamReply{Type: "error", Error: "unknown frame type"})
		}
	}
}

// flushStream sends buffered audio for transcription and pushes the
// transcript plus intent back over the socket.
func (h *VoiceHandler) flushStream(c *gin.Context, conn *websocket.Conn, ring *audioring.Ring) {
	var audio []byte
	for {
		chunk, ok := ring.Pop()
		if !ok {
			break
		}
		audio = append(audio, chunk.Data...)
	}
	if len(audio) == 0 {
		h.writeReply(conn, streamReply{Type: "error", Error: "no buffered audio"})
		return
	}

	transcription, err := h.client.Transcribe(c.Request.Context(), base64.StdEncoding.EncodeToString(audio), "")
	if err != nil {
		h.logger.Errorf("stream transcription failed: %v", err)
		h.writeReply(conn, streamReply{Type: "error", Error: "transcription failed"})
		return
	}

	intentResult := h.analyzer.Analyze(transcription.Text)
	h.writeReply(conn, streamReply{
		Type:          "transcription",
		Transcription: transcription,
		Intent:        &intentResult,
	})
}

func (h *VoiceHandler) writeReply(conn *websocket.Conn, reply streamReply) {
	if err := conn.WriteJSON(reply); err != nil {
		h.logger.Errorf("voice ws write error: %v", err)
	}
}
