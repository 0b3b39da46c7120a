package skill

import "testing"

func TestClassifier_Priority(t *testing.T) {
	t.Parallel()
	c := NewClassifier()

	tests := []struct {
		name      string
		utterance string
		want      Skill
	}{
		{"weather question", "What's the weather in Paris?", SkillWeather},
		{"document beats weather", "What's the temperature mentioned in the document?", SkillDocument},
		{"document upload", "I uploaded a PDF for you", SkillDocument},
		{"search phrase", "search for large language models", SkillSearch},
		{"search question", "how do airplanes actually stay in the air?", SkillSearch},
		{"study summarize", "summarize the French Revolution", SkillStudy},
		{"study quiz", "quiz me on photosynthesis", SkillStudy},
		{"plain chat", "good morning, how are you doing", SkillNone},
		{"short question is chat", "really?", SkillNone},
		{"empty", "   ", SkillNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.utterance).Skill; got != tt.want {
				t.Fatalf("Classify(%q).Skill = %q, want %q", tt.utterance, got, tt.want)
			}
		})
	}
}

func TestClassifier_WeatherCityExtraction(t *testing.T) {
	t.Parallel()
	c := NewClassifier()

	m := c.Classify("What's the weather in Paris?")
	if m.Skill != SkillWeather {
		t.Fatalf("skill = %q, want weather", m.Skill)
	}
	if got := m.Params["city"]; got != "Paris" {
		t.Fatalf("city = %q, want Paris", got)
	}
}

func TestClassifier_WeatherWithoutCity(t *testing.T) {
	t.Parallel()
	c := NewClassifier()

	m := c.Classify("how's the weather looking")
	if m.Skill != SkillWeather {
		t.Fatalf("skill = %q, want weather", m.Skill)
	}
	if got := m.Params["city"]; got != "" {
		t.Fatalf("city = %q, want empty", got)
	}
}

func TestClassifier_SearchQueryExtraction(t *testing.T) {
	t.Parallel()
	c := NewClassifier()

	tests := []struct {
		utterance string
		wantQuery string
	}{
		{"search for large language models", "large language models"},
		{"tell me about the Roman Empire", "the Roman Empire"},
		{"what is photosynthesis?", "photosynthesis"},
	}
	for _, tt := range tests {
		m := c.Classify(tt.utterance)
		if m.Skill != SkillSearch {
			t.Fatalf("Classify(%q).Skill = %q, want search", tt.utterance, m.Skill)
		}
		if got := m.Params["query"]; got != tt.wantQuery {
			t.Errorf("Classify(%q) query = %q, want %q", tt.utterance, got, tt.wantQuery)
		}
	}
}

func TestClassifier_StudyTaskExtraction(t *testing.T) {
	t.Parallel()
	c := NewClassifier()

	tests := []struct {
		utterance string
		wantTask  string
	}{
		{"summarize the French Revolution", "summarize"},
		{"explain recursion to me", "explain"},
		{"make flashcards about chemistry", "quiz"},
		{"help me study world history", "quiz"},
	}
	for _, tt := range tests {
		m := c.Classify(tt.utterance)
		if m.Skill != SkillStudy {
			t.Fatalf("Classify(%q).Skill = %q, want study", tt.utterance, m.Skill)
		}
		if got := m.Params["task"]; got != tt.wantTask {
			t.Errorf("Classify(%q) task = %q, want %q", tt.utterance, got, tt.wantTask)
		}
	}
}

func TestClassifier_DocumentAnalysisType(t *testing.T) {
	t.Parallel()
	c := NewClassifier()

	tests := []struct {
		utterance string
		want      string
	}{
		{"summarize my document", "summarize"},
		{"what are the key points of the pdf", "key_points"},
		{"explain the concepts in the document", "concepts"},
		{"what questions does the document answer", "questions"},
	}
	for _, tt := range tests {
		m := c.Classify(tt.utterance)
		if m.Skill != SkillDocument {
			t.Fatalf("Classify(%q).Skill = %q, want document", tt.utterance, m.Skill)
		}
		if got := m.Params["analysis_type"]; got != tt.want {
			t.Errorf("Classify(%q) analysis_type = %q, want %q", tt.utterance, got, tt.want)
		}
	}
}
