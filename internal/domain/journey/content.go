package journey

import (
	"encoding/json"
	"fmt"
)

// BlockType tags the content payload carried by a block.
type BlockType string

const (
	BlockTypeRead       BlockType = "read"
	BlockTypeVideo      BlockType = "video"
	BlockTypeImage      BlockType = "image"
	BlockTypeQuiz       BlockType = "quiz"
	BlockTypeForm       BlockType = "form"
	BlockTypeMission    BlockType = "mission"
	BlockTypeAnimation  BlockType = "animation"
	BlockTypeAIHelp     BlockType = "ai_help"
	BlockTypeCheckpoint BlockType = "checkpoint"
	BlockTypeCode       BlockType = "code"
	BlockTypeExercise   BlockType = "exercise"
	BlockTypeResource   BlockType = "resource"
)

func (t BlockType) Known() bool {
	switch t {
	case BlockTypeRead, BlockTypeVideo, BlockTypeImage, BlockTypeQuiz,
		BlockTypeForm, BlockTypeMission, BlockTypeAnimation, BlockTypeAIHelp,
		BlockTypeCheckpoint, BlockTypeCode, BlockTypeExercise, BlockTypeResource:
		return true
	}
	return false
}

// BlockContent is the tagged union of per-type content payloads. Exactly one
// variant exists per BlockType plus UnknownContent for types this build does
// not recognize.
type BlockContent interface {
	blockContent()
}

type ReadContent struct {
	Title            string `json:"title"`
	Body             string `json:"body"`
	EstimatedMinutes int    `json:"estimatedMinutes,omitempty"`
}

type VideoContent struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	CaptionsURL     string `json:"captionsUrl,omitempty"`
}

type ImageContent struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type QuizQuestion struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Tags         []string `json:"tags,omitempty"`
}

type QuizContent struct {
	Title string `json:"title,omitempty"`
	// PassingScore nil means the engine default of 50.
	PassingScore *float64       `json:"passingScore,omitempty"`
	Questions    []QuizQuestion `json:"questions"`
}

type FormField struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
}

type FormContent struct {
	Title  string      `json:"title,omitempty"`
	Fields []FormField `json:"fields"`
}

type MissionContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Steps       []string `json:"steps,omitempty"`
}

type AnimationContent struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
	Loop  bool   `json:"loop,omitempty"`
}

type AIHelpContent struct {
	Title  string `json:"title,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

// CheckpointContent gates on facts the run has already produced, typically
// the preceding quiz score. RevealDelaySeconds is presentation-only; the
// engine evaluates PassWhen without any delay.
type CheckpointContent struct {
	Title              string          `json:"title,omitempty"`
	PassWhen           *ConditionGroup `json:"passWhen,omitempty"`
	RevealDelaySeconds int             `json:"revealDelaySeconds,omitempty"`
}

type CodeContent struct {
	Title        string `json:"title,omitempty"`
	Language     string `json:"language"`
	Starter      string `json:"starter,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type ExerciseContent struct {
	Title        string   `json:"title"`
	Instructions string   `json:"instructions,omitempty"`
	Hints        []string `json:"hints,omitempty"`
}

type ResourceLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type ResourceContent struct {
	Title string         `json:"title,omitempty"`
	Links []ResourceLink `json:"links"`
}

// UnknownContent carries the verbatim payload of a block type this build
// does not recognize. It round-trips unchanged.
type UnknownContent struct {
	Type BlockType
	Raw  json.RawMessage
}

func (ReadContent) blockContent()       {}
func (VideoContent) blockContent()      {}
func (ImageContent) blockContent()      {}
func (QuizContent) blockContent()       {}
func (FormContent) blockContent()       {}
func (MissionContent) blockContent()    {}
func (AnimationContent) blockContent()  {}
func (AIHelpContent) blockContent()     {}
func (CheckpointContent) blockContent() {}
func (CodeContent) blockContent()       {}
func (ExerciseContent) blockContent()   {}
func (ResourceContent) blockContent()   {}
func (UnknownContent) blockContent()    {}

// Block is one step of a journey.
type Block struct {
	ID      string
	Type    BlockType
	Content BlockContent
}

type blockEnvelope struct {
	ID      string          `json:"id"`
	Type    BlockType       `json:"type"`
	Content json.RawMessage `json:"content"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var env blockEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	content, err := DecodeContent(env.Type, env.Content)
	if err != nil {
		return fmt.Errorf("block %q: %w", env.ID, err)
	}
	b.ID = env.ID
	b.Type = env.Type
	b.Content = content
	return nil
}

func (b Block) MarshalJSON() ([]byte, error) {
	raw, err := EncodeContent(b.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(blockEnvelope{ID: b.ID, Type: b.Type, Content: raw})
}

// DecodeContent parses a content payload according to its block type. An
// unrecognized type yields UnknownContent, never an error.
func DecodeContent(t BlockType, raw json.RawMessage) (BlockContent, error) {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	switch t {
	case BlockTypeRead:
		var c ReadContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case BlockTypeVideo:
		var c VideoContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case BlockTypeImage:
		var c ImageContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case BlockTypeQuiz:
		var c QuizContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case BlockTypeForm:
		var c FormContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case BlockTypeMission:
		var c MissionContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case BlockTypeAnimation:
		var c AnimationContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case BlockTypeAIHelp:
		var c AIHelpContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case BlockTypeCheckpoint:
		var c CheckpointContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case BlockTypeCode:
		var c CodeContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case BlockTypeExercise:
		var c ExerciseContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case BlockTypeResource:
		var c ResourceContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return UnknownContent{Type: t, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

// EncodeContent renders a content payload back to JSON. UnknownContent
// emits its original bytes.
func EncodeContent(c BlockContent) (json.RawMessage, error) {
	switch v := c.(type) {
	case nil:
		return json.RawMessage(`{}`), nil
	case UnknownContent:
		if len(v.Raw) == 0 {
			return json.RawMessage(`{}`), nil
		}
		return v.Raw, nil
	default:
		return json.Marshal(v)
	}
}
