// Package hooks runs user shell commands after a generation succeeds or an
// archive is downloaded.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/scriptwiz/internal/logger"
	"github.com/mark3labs/scriptwiz/internal/wizard"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".scriptwiz.hooks.yml"

// LoadConfig loads the hooks configuration from the working directory.
// Returns nil if the config file doesn't exist (hooks are optional).
// Returns an error only if the file exists but cannot be parsed.
func LoadConfig(workDir string) (*Config, error) {
	configPath := filepath.Join(workDir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No hooks config found at %s", configPath)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	logger.Debug("Loaded hooks config from %s (version: %d)", configPath, cfg.Version)
	return &cfg, nil
}

// Variables holds template variables that can be expanded in hook commands.
type Variables struct {
	Artifact string
	Category string
	Prompt   string
	Path     string
}

// Execute runs a hook command and returns its output.
// Placeholders in the command ({{artifact}}, {{category}}, {{path}}) become
// quoted environment references, so values from the generator are never
// parsed by the shell. The prompt is available as $SCRIPTWIZ_PROMPT.
// On error, returns an error message as output and nil error (graceful degradation).
// Only returns error for context cancellation.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command)
	logger.Debug("Executing hook command: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	// Children that outlive sh keep the output pipes open.
	cmd.WaitDelay = time.Second
	cmd.Env = append(os.Environ(),
		"SCRIPTWIZ_ARTIFACT_ID="+vars.Artifact,
		"SCRIPTWIZ_CATEGORY="+vars.Category,
		"SCRIPTWIZ_PROMPT="+vars.Prompt,
		"SCRIPTWIZ_PATH="+vars.Path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if execCtx.Err() == context.DeadlineExceeded {
		logger.Warn("Hook command timed out after %ds: %s", timeout, command)
		return fmt.Sprintf("[Hook timed out after %ds]\nPartial output:\n%s", timeout, stdout.String()), nil
	}

	if err != nil {
		logger.Warn("Hook command failed: %v", err)
		output := stdout.String()
		if stderr.Len() > 0 {
			output += "\n[stderr]\n" + stderr.String()
		}
		return fmt.Sprintf("[Hook command failed: %v]\n%s", err, output), nil
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		logger.Debug("Hook stderr: %s", stderr.String())
		output += "\n[stderr]\n" + stderr.String()
	}

	logger.Debug("Hook executed successfully, output length: %d bytes", len(output))
	return output, nil
}

// ExecuteAll runs hooks in order and joins their non-empty outputs with a
// blank line. It stops at the first context cancellation.
func ExecuteAll(ctx context.Context, hooks []*HookConfig, workDir string, vars Variables) (string, error) {
	var outputs []string
	for _, h := range hooks {
		out, err := Execute(ctx, h, workDir, vars)
		if err != nil {
			return strings.Join(outputs, "\n"), err
		}
		if out != "" {
			outputs = append(outputs, out)
		}
	}
	return strings.Join(outputs, "\n"), nil
}

// Listener returns a controller listener that runs the post_generate hooks
// for every successful generation, in the background so the wizard is never
// held up. Output goes to the log. The returned wait blocks until every
// started hook has finished.
func Listener(ctx context.Context, cfg *Config, workDir string) (wizard.Listener, func()) {
	var wg sync.WaitGroup
	listen := func(ev wizard.Event) {
		if ev.Type != wizard.EventGenerationSucceeded || cfg == nil || len(cfg.Hooks.PostGenerate) == 0 {
			return
		}
		vars := Variables{}
		if ev.Result != nil {
			vars.Artifact = ev.Result.ArtifactID
		}
		if ev.Request != nil {
			vars.Category = ev.Request.Category
			vars.Prompt = ev.Request.Prompt
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := ExecuteAll(ctx, cfg.Hooks.PostGenerate, workDir, vars)
			if err != nil {
				logger.Warn("post_generate hooks interrupted: %v", err)
				return
			}
			if out != "" {
				logger.Info("post_generate hook output for %s:\n%s", vars.Artifact, out)
			}
		}()
	}
	return listen, wg.Wait
}

// expandVariables replaces {{variable}} placeholders with double-quoted
// references to the matching environment variable.
func expandVariables(command string) string {
	replacements := map[string]string{
		"{{artifact}}": `"$SCRIPTWIZ_ARTIFACT_ID"`,
		"{{category}}": `"$SCRIPTWIZ_CATEGORY"`,
		"{{path}}":     `"$SCRIPTWIZ_PATH"`,
	}

	result := command
	for placeholder, ref := range replacements {
		result = strings.ReplaceAll(result, placeholder, ref)
	}
	return result
}
