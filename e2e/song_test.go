package e2e

import (
	"strings"
	"testing"
)

func TestSongStartFlow(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, "POST", "/api/songs/start",
		`{"message":"an energetic house track about friday night"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, 202)

	accepted := parseJSON(t, resp)
	jobID, _ := accepted["jobId"].(string)
	if jobID == "" {
		t.Fatalf("missing jobId: %v", accepted)
	}

	status := waitForJob(t, ta, jobID)
	if status["status"] != "succeeded" {
		t.Fatalf("job finished with %v (error %v)", status["status"], status["error"])
	}

	resp, err = doAuthRequest(t, ta.app, "GET", "/api/jobs/"+jobID+"/result", "")
	if err != nil {
		t.Fatalf("result request: %v", err)
	}
	assertStatus(t, resp, 200)

	result := parseJSON(t, resp)
	if result["genre"] != "house" {
		t.Errorf("genre = %v", result["genre"])
	}
	trackURL, _ := result["trackUrl"].(string)
	if !strings.HasPrefix(trackURL, "mock://") {
		t.Errorf("expected mock track URL, got %q", trackURL)
	}
	if result["narration"] == "" {
		t.Error("missing narration")
	}
	if result["lyrics"] == "" {
		t.Error("missing lyrics")
	}
}

func TestSongInstrumentalOnly(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, "POST", "/api/songs/start",
		`{"message":"chill lofi beat","settings":{"instrumentalOnly":true}}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, 202)

	accepted := parseJSON(t, resp)
	jobID := accepted["jobId"].(string)
	waitForJob(t, ta, jobID)

	resp, err = doAuthRequest(t, ta.app, "GET", "/api/jobs/"+jobID+"/result", "")
	if err != nil {
		t.Fatalf("result request: %v", err)
	}
	result := parseJSON(t, resp)
	if lyrics, ok := result["lyrics"]; ok && lyrics != "" {
		t.Errorf("instrumental-only result has lyrics: %v", lyrics)
	}
}

func TestSongResultBeforeCompletion(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, "GET", "/api/jobs/unknown/result", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, 404)
}

func TestHistoryAfterSong(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, "POST", "/api/songs/start",
		`{"message":"a dark drill track about winter"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	accepted := parseJSON(t, resp)
	waitForJob(t, ta, accepted["jobId"].(string))

	resp, err = doAuthRequest(t, ta.app, "GET", "/api/history", "")
	if err != nil {
		t.Fatalf("history request: %v", err)
	}
	assertStatus(t, resp, 200)

	body := parseJSON(t, resp)
	songs, _ := body["songs"].([]interface{})
	if len(songs) != 1 {
		t.Fatalf("history length = %d, want 1", len(songs))
	}
	entry, _ := songs[0].(map[string]interface{})
	if entry["genre"] != "drill" {
		t.Errorf("history genre = %v", entry["genre"])
	}
	if entry["prompt"] != "a dark drill track about winter" {
		t.Errorf("history prompt = %v", entry["prompt"])
	}
}

func TestHistoryClear(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, "POST", "/api/songs/start",
		`{"message":"a salsa song about summer"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	accepted := parseJSON(t, resp)
	waitForJob(t, ta, accepted["jobId"].(string))

	resp, err = doAuthRequest(t, ta.app, "DELETE", "/api/history", "")
	if err != nil {
		t.Fatalf("clear request: %v", err)
	}
	assertStatus(t, resp, 204)

	resp, err = doAuthRequest(t, ta.app, "GET", "/api/history", "")
	if err != nil {
		t.Fatalf("history request: %v", err)
	}
	body := parseJSON(t, resp)
	songs, _ := body["songs"].([]interface{})
	if len(songs) != 0 {
		t.Errorf("history not empty after clear: %d entries", len(songs))
	}
}

func TestSongValidation(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, "POST", "/api/songs/start", `{"settings":{}}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, 400)
}
