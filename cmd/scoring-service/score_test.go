package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const batchJSON = `{
  "students": [
    {"student_id": "s1", "student_name": "Ana", "answers": ["A", "B", "C", "D"]},
    {"student_id": "s2", "student_name": "Bruno", "answers": ["a", "", "C", "E"]}
  ],
  "answer_key": ["A", "B", "C", "E"]
}`

func writeBatch(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(batchJSON), 0o600))
	return path
}

func TestScoreCmd(t *testing.T) {
	cmd := newScoreCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--input", writeBatch(t), "--stats"})

	require.NoError(t, cmd.Execute())

	var resp services.ScoreResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "s1", resp.Results[0].StudentID)
	assert.Equal(t, 7.5, resp.Results[0].AverageScore)
	assert.Equal(t, 7.5, resp.Results[1].AverageScore)
	require.NotNil(t, resp.Statistics)
	assert.Equal(t, 2, resp.Statistics.TotalStudents)
}

func TestScoreCmd_PointsOverrideWithAreas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areas.json")
	body := `{"students":[{"student_id":"s1","answers":["A","B"]}],
	  "answer_key":["A","B"],
	  "areas":[{"area":"X","start":1,"end":2}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cmd := newScoreCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--input", path, "--points", "1"})
	require.NoError(t, cmd.Execute())

	var resp services.ScoreResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, 2.0, resp.Results[0].AreaScores["X"])
	assert.Equal(t, 1.0, resp.PointsPerCorrect)
}

func TestScoreCmd_Errors(t *testing.T) {
	cmd := newScoreCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input", filepath.Join(t.TempDir(), "missing.json")})
	assert.ErrorContains(t, cmd.Execute(), "open input")

	cmd = newScoreCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input", writeBatch(t), "--preset", "NOPE"})
	assert.Error(t, cmd.Execute())
}

func TestExportCmd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.xlsx")
	cmd := newExportCmd()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input", writeBatch(t), "--out", out})
	require.NoError(t, cmd.Execute())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Alunos")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
