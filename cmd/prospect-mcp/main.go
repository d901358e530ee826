package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeRequest mirrors the Prospect API request model.
type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats,omitempty"`
	Mobile  bool     `json:"mobile,omitempty"`
	Stealth bool     `json:"stealth,omitempty"`
}

// scrapeResponse mirrors the Prospect API response model.
type scrapeResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Markdown string   `json:"markdown"`
		Links    []string `json:"links"`
		Metadata struct {
			Title     string `json:"title"`
			SourceURL string `json:"source_url"`
			Language  string `json:"language"`
		} `json:"metadata"`
	} `json:"data"`
	EngineUsed string `json:"engine_used"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// contactsResponse mirrors the Prospect contacts API response model.
type contactsResponse struct {
	Success      bool            `json:"success"`
	Data         json.RawMessage `json:"data"`
	Confidence   float64         `json:"confidence"`
	SourceURL    string          `json:"source_url"`
	PagesScraped []string        `json:"pages_scraped"`
	Error        string          `json:"error"`
}

func main() {
	apiURL := os.Getenv("PROSPECT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("PROSPECT_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "PROSPECT_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"prospect",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape",
		mcp.WithDescription("Scrape a web page and return its content as markdown. Falls back to a headless browser for JavaScript-heavy pages."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithBoolean("mobile",
			mcp.Description("Emulate a mobile viewport"),
		),
		mcp.WithBoolean("stealth",
			mcp.Description("Enable anti-bot-detection evasions"),
		),
	)
	s.AddTool(scrapeTool, handleScrape(apiURL, apiKey))

	contactsTool := mcp.NewTool("extract_contacts",
		mcp.WithDescription("Scrape a business website (homepage plus imprint/contact/team pages) and extract structured contact data: emails, phones, contact persons, addresses, VAT ID and social links."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The website to extract contacts from"),
		),
	)
	s.AddTool(contactsTool, handleExtractContacts(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the Prospect API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleScrape(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := scrapeRequest{
			URL:     url,
			Formats: []string{"markdown"},
			Mobile:  request.GetBool("mobile", false),
			Stealth: request.GetBool("stealth", false),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/scrape", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape request failed: %v", err)), nil
		}

		var scrapeResp scrapeResponse
		if err := json.Unmarshal(respBody, &scrapeResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !scrapeResp.Success || scrapeResp.Data == nil {
			errMsg := "scrape failed"
			if scrapeResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", scrapeResp.Error.Code, scrapeResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		m := scrapeResp.Data.Metadata
		result := fmt.Sprintf("Title: %s\nSource: %s\nEngine: %s\n\n%s",
			m.Title, m.SourceURL, scrapeResp.EngineUsed, scrapeResp.Data.Markdown)

		return mcp.NewToolResultText(result), nil
	}
}

func handleExtractContacts(apiURL, apiKey string) server.ToolHandlerFunc {
	// The contact flow scrapes up to five pages sequentially.
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/contacts", map[string]string{"url": url})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("contacts request failed: %v", err)), nil
		}

		var contactsResp contactsResponse
		if err := json.Unmarshal(respBody, &contactsResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !contactsResp.Success {
			errMsg := "contact extraction failed"
			if contactsResp.Error != "" {
				errMsg = contactsResp.Error
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var prettyData bytes.Buffer
		if err := json.Indent(&prettyData, contactsResp.Data, "", "  "); err != nil {
			prettyData.Write(contactsResp.Data)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Source: %s\nConfidence: %.1f\nPages scraped: %s\n\n",
			contactsResp.SourceURL, contactsResp.Confidence, strings.Join(contactsResp.PagesScraped, ", "))
		sb.WriteString("Contact data:\n")
		sb.Write(prettyData.Bytes())

		return mcp.NewToolResultText(sb.String()), nil
	}
}
