package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sceneforge/rigkit/pkg/rig"
	"github.com/sceneforge/rigkit/pkg/scene"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type fixRequest struct {
	Template string `json:"template"`
	Parent   string `json:"parent,omitempty"`
}

var titleCaser = cases.Title(language.English)

func listTemplates(client *http.Client, baseURL string) ([]string, map[string]string, error) {
	resp, err := client.Get(baseURL + "/v1/templates")
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var templateMap map[string]string
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if err := json.Unmarshal(body, &templateMap); err != nil {
		return nil, nil, err
	}

	// Templates saved without a display name are listed by a readable form
	// of their filename.
	for name, file := range templateMap {
		if name == "" {
			delete(templateMap, name)
			templateMap[displayName(file)] = file
		}
	}

	return sortedNames(templateMap), templateMap, nil
}

func getTemplate(client *http.Client, baseURL string, filename string) (*scene.Template, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/templates/%s", baseURL, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get template: %s", errorResp.Error)
	}

	var tpl scene.Template
	if err := json.Unmarshal(body, &tpl); err != nil {
		return nil, fmt.Errorf("failed to parse template response: %w", err)
	}
	tpl.Normalize()
	return &tpl, nil
}

func runFix(client *http.Client, baseURL string, templateFile string, parent string) (*rig.Report, error) {
	jsonData, err := json.Marshal(fixRequest{
		Template: templateFile,
		Parent:   parent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fix request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/fix",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("fix failed: %s", errorResp.Error)
	}

	var report rig.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to parse fix response: %w", err)
	}

	return &report, nil
}

func displayName(filename string) string {
	name := strings.TrimSuffix(filename, ".json")
	name = strings.ReplaceAll(name, "_", " ")
	return titleCaser.String(name)
}
