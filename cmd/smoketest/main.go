// Command smoketest posts a throwaway product against a running storefront,
// checks that its imageUrl survives the round trip and deletes it again.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/guonaihong/gout"
)

var (
	baseURL  = flag.String("url", "http://127.0.0.1:5000", "storefront base url")
	username = flag.String("u", "admin", "admin username")
	password = flag.String("p", "admin123", "admin password")
	keep     = flag.Bool("keep", false, "keep the test product")
)

const testImageURL = "/images/test.jpg"

type product struct {
	ID       string  `json:"id"`
	PartID   string  `json:"partId"`
	ImageURL *string `json:"imageUrl"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func main() {
	flag.Parse()
	api := strings.TrimRight(*baseURL, "/") + "/api"
	if err := run(api); err != nil {
		fmt.Fprintln(os.Stderr, "FAIL:", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}

func run(api string) error {
	token, err := login(api)
	if err != nil {
		return err
	}
	auth := gout.H{"Authorization": "Bearer " + token}

	var created product
	var failure apiError
	code := 0
	err = gout.POST(api + "/products").
		SetTimeout(10 * time.Second).
		SetHeader(auth).
		SetJSON(gout.H{
			"partId":      fmt.Sprintf("TEST-DEBUG-%d", time.Now().Unix()),
			"type":        "engine",
			"year":        2022,
			"make":        "Test",
			"model":       "Test",
			"details":     "Test",
			"price":       100000,
			"imageUrl":    testImageURL,
			"location":    "Test",
			"description": "Test",
		}).
		Callback(func(c *gout.Context) error {
			code = c.Code
			if c.Code == http.StatusCreated {
				c.BindJSON(&created)
				return nil
			}
			c.BindJSON(&failure)
			return nil
		}).
		Do()
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	if code != http.StatusCreated {
		return fmt.Errorf("create product: status %d %s %s", code, failure.Code, failure.Message)
	}
	fmt.Printf("created product %s (%s)\n", created.ID, created.PartID)

	var fetched product
	err = gout.GET(api + "/products/" + created.ID).
		SetTimeout(10 * time.Second).
		BindJSON(&fetched).
		Code(&code).
		Do()
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("get product: status %d", code)
	}
	if fetched.ImageURL == nil || *fetched.ImageURL != testImageURL {
		return fmt.Errorf("imageUrl not preserved: %v", fetched.ImageURL)
	}
	fmt.Println("imageUrl preserved:", *fetched.ImageURL)

	if *keep {
		return nil
	}
	err = gout.DELETE(api + "/products/" + created.ID).
		SetTimeout(10 * time.Second).
		SetHeader(auth).
		Code(&code).
		Do()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("delete product: status %d", code)
	}
	return nil
}

func login(api string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	code := 0
	err := gout.POST(api + "/admin/login").
		SetTimeout(10 * time.Second).
		SetJSON(gout.H{"username": *username, "password": *password}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if code != http.StatusOK || resp.Token == "" {
		return "", fmt.Errorf("login: status %d", code)
	}
	return resp.Token, nil
}
