package prompt

import (
	"context"
	"strings"
	"testing"
)

func TestLoadPromptSetDefaults(t *testing.T) {
	t.Parallel()

	set, err := LoadPromptSet(context.Background(), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(set.System, "Tu es Kimrau, le responsable temporaire de l'Hôtel California") {
		t.Fatalf("unexpected system prompt: %q", set.System)
	}
	if !strings.Contains(set.System, "DELETE : supprimer, annuler") {
		t.Fatalf("system prompt misses the http keyword table: %q", set.System)
	}
	if strings.ContainsAny(set.System, "{}") {
		t.Fatalf("system prompt has unrendered placeholders: %q", set.System)
	}
	if set.Greeting != "Présente-toi en tant que responsable de l'hôtel et souhaite la bienvenue au client." {
		t.Fatalf("unexpected greeting request: %q", set.Greeting)
	}
	if set.Farewell != "Merci de votre visite à l'Hôtel California. Au plaisir de vous revoir bientôt." {
		t.Fatalf("unexpected farewell: %q", set.Farewell)
	}
}

func TestLoadPromptSetCustomNames(t *testing.T) {
	t.Parallel()

	set, err := LoadPromptSet(context.Background(), Config{Persona: "Ada", Hotel: "Hôtel Lumière"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(set.System, "Tu es Ada, le responsable temporaire de l'Hôtel Lumière") {
		t.Fatalf("unexpected system prompt: %q", set.System)
	}
	if !strings.Contains(set.Farewell, "Hôtel Lumière") {
		t.Fatalf("unexpected farewell: %q", set.Farewell)
	}
}
