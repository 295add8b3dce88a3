package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"agenda-widget/models"
	"agenda-widget/render"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "widget server base URL")
	id := flag.Int("id", 1, "widget instance id")
	width := flag.Int("width", 44, "widget width in columns")
	flag.Parse()

	view, err := fetchView(*server, *id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preview: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(render.Widget(view, *width))
}

func fetchView(server string, id int) (models.WidgetView, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(fmt.Sprintf("%s/api/v1/widgets/%d/view", server, id))
	if err != nil {
		return models.WidgetView{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return models.WidgetView{}, fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
	}

	var body struct {
		Data models.WidgetView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.WidgetView{}, fmt.Errorf("failed to decode view: %w", err)
	}
	return body.Data, nil
}
