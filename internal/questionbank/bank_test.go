package questionbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotseatlive/hotseat-backend/internal/engine"
)

func writeBank(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const validBank = `{
  "questionSets": [
    {
      "setId": "set-1",
      "setName": "Warmup",
      "questions": [
        {
          "id": "q1", "number": 1, "text": "Capital of France?",
          "options": {"A": "Paris", "B": "Lyon", "C": "Nice", "D": "Lille"},
          "correctAnswer": "A"
        },
        {
          "id": "q2", "number": 2, "text": "2 + 2?",
          "options": {"A": "3", "B": "4", "C": "5", "D": "22"},
          "correctAnswer": "B"
        }
      ]
    }
  ]
}`

func TestLoad_ValidBank(t *testing.T) {
	path := writeBank(t, validBank)

	sets, err := Load(path, 2)

	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "set-1", sets[0].SetID)
	require.Len(t, sets[0].Questions, 2)
	assert.Equal(t, engine.OptionB, sets[0].Questions[1].Correct)
	assert.Equal(t, "Paris", sets[0].Questions[0].Options[engine.OptionA])
}

func TestLoad_WrongCountForLadder(t *testing.T) {
	path := writeBank(t, validBank)

	_, err := Load(path, 15)

	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violations[0], "has 2 questions, ladder needs 15")
}

func TestLoad_CollectsSchemaViolations(t *testing.T) {
	path := writeBank(t, `{
  "questionSets": [
    {
      "setId": "set-bad",
      "questions": [
        {
          "id": "q1", "number": 1, "text": "Missing an option",
          "options": {"A": "yes", "B": "no", "C": "maybe"},
          "correctAnswer": "E"
        },
        {
          "id": "q2", "number": 7, "text": "Out of order",
          "options": {"A": "1", "B": "2", "C": "3", "D": "4"},
          "correctAnswer": "A"
        }
      ]
    }
  ]
}`)

	_, err := Load(path, 2)

	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)
	// missing option D, bad correct letter, bad numbering all surface
	require.GreaterOrEqual(t, len(verr.Violations), 2)
}

func TestLoad_EmptyBank(t *testing.T) {
	path := writeBank(t, `{"questionSets": []}`)

	_, err := Load(path, 2)

	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violations[0], "no sets")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), 2)
	require.Error(t, err)
}
