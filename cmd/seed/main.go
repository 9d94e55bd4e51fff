// Command seed fills a running blog-service with fake users, groups, posts,
// comments and follows, exercising the public API the way a browser would.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var baseURL = envOr("BLOG_URL", "http://localhost:8080")

// client does not follow redirects so we can treat 302 as success.
var client = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
	Timeout: 10 * time.Second,
}

type account struct {
	Username string
	Token    string
}

func main() {
	gofakeit.Seed(time.Now().UnixNano())

	var accounts []account
	for i := 0; i < 5; i++ {
		accounts = append(accounts, register())
	}

	groupID := createGroup(accounts[0].Token)

	var postIDs []uint
	for _, a := range accounts {
		for i := 0; i < 4; i++ {
			postIDs = append(postIDs, createPost(a, groupID))
		}
	}

	for _, a := range accounts {
		for _, id := range postIDs {
			if gofakeit.Bool() {
				addComment(a.Token, id)
			}
		}
		for _, other := range accounts {
			if other.Username != a.Username && gofakeit.Bool() {
				follow(a.Token, other.Username)
			}
		}
	}

	log.Printf("seeded %d users, %d posts", len(accounts), len(postIDs))
}

func register() account {
	username := strings.ToLower(gofakeit.Username())
	body := map[string]string{
		"username": username,
		"email":    gofakeit.Email(),
		"password": "sup3rsecret",
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	postJSON("/auth/signup", "", body, &out)
	if out.AccessToken == "" {
		log.Fatalf("could not register %s", username)
	}
	return account{Username: username, Token: out.AccessToken}
}

func createGroup(token string) uint {
	slug := gofakeit.Word() + fmt.Sprint(gofakeit.Number(1, 9999))
	var out struct {
		ID uint `json:"id"`
	}
	postJSON("/group/", token, map[string]string{
		"title":       gofakeit.BookTitle(),
		"slug":        slug,
		"description": gofakeit.Sentence(8),
	}, &out)
	return out.ID
}

func createPost(a account, groupID uint) uint {
	body := map[string]any{"text": gofakeit.Paragraph(1, 3, 10, " ")}
	if gofakeit.Bool() && groupID != 0 {
		body["group_id"] = groupID
	}
	postJSON("/create/", a.Token, body, nil)

	// The create flow redirects to the profile; read the id back from it.
	var out struct {
		Items []struct {
			ID uint `json:"id"`
		} `json:"items"`
	}
	getJSON("/profile/"+a.Username+"/", a.Token, &out)
	if len(out.Items) == 0 {
		log.Fatalf("post for %s did not land", a.Username)
	}
	return out.Items[0].ID
}

func addComment(token string, postID uint) {
	postJSON(fmt.Sprintf("/posts/%d/comment/", postID), token,
		map[string]string{"text": gofakeit.Sentence(6)}, nil)
}

func follow(token, username string) {
	req, _ := http.NewRequest("GET", baseURL+"/profile/"+username+"/follow/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("follow %s: %v", username, err)
	}
	resp.Body.Close()
}

func postJSON(path, token string, body any, out any) {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", baseURL+path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		log.Fatalf("POST %s: status %d", path, resp.StatusCode)
	}
	if out != nil {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
}

func getJSON(path, token string, out any) {
	req, _ := http.NewRequest("GET", baseURL+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	_ = json.NewDecoder(resp.Body).Decode(out)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
