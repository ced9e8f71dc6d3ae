package config

import "testing"

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		name   string
		config ServerConfig
		want   string
	}{
		{"default shape", ServerConfig{Host: "0.0.0.0", Port: 8080}, "0.0.0.0:8080"},
		{"custom host and port", ServerConfig{Host: "127.0.0.1", Port: 9090}, "127.0.0.1:9090"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.Addr(); got != tt.want {
				t.Errorf("Addr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGraphConfig_IsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		config GraphConfig
		want   bool
	}{
		{"configured with uri", GraphConfig{Neo4jURI: "bolt://localhost:7687"}, true},
		{"not configured without uri", GraphConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLLMConfig_IsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		config LLMConfig
		want   bool
	}{
		{"configured with api key", LLMConfig{AnthropicAPIKey: "sk-ant-test"}, true},
		{"not configured without api key", LLMConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsLLMConfigured(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   bool
	}{
		{"delegates to LLM.IsConfigured true", Config{LLM: LLMConfig{AnthropicAPIKey: "sk-ant-test"}}, true},
		{"delegates to LLM.IsConfigured false", Config{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.IsLLMConfigured(); got != tt.want {
				t.Errorf("IsLLMConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}
