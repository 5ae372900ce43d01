// Command client is a minimal interactive player used for manual testing
// against a running server. It fetches a token, attaches to the websocket
// endpoint, asks to be matched and prints everything the server sends.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"github.com/wfunc/daifugo/message"
)

func fetchToken(base string) (string, error) {
	resp, err := http.Get(base + "/get_token")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("get_token: unexpected status %s", resp.Status)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Token, nil
}

func main() {
	addr := flag.String("addr", "localhost:8000", "server address")
	flag.Parse()

	token, err := fetchToken("http://" + *addr)
	if err != nil {
		log.Fatalf("cannot fetch token: %v", err)
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     *addr,
		Path:     "/ws",
		RawQuery: "token=" + url.QueryEscape(token),
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("cannot connect: %v", err)
	}
	defer conn.Close()

	// The first frame is the server's acknowledgement carrying our identity.
	var ack message.Envelope
	if err := conn.ReadJSON(&ack); err != nil {
		log.Fatalf("cannot read ack: %v", err)
	}
	log.Printf("connected as %s", ack.UID)

	// Ask to be matched.
	join := message.NewRoomStatus(ack.UID, "client", message.StatusMatching)
	if err := conn.WriteJSON(join); err != nil {
		log.Fatalf("cannot request match: %v", err)
	}
	log.Print("waiting for a match...")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		conn.Close()
		os.Exit(0)
	}()

	for {
		var env message.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			log.Fatalf("connection closed: %v", err)
		}
		switch payload := env.Payload.(type) {
		case message.OutPlayPayload:
			switch payload.PlayType {
			case message.PlayMyCards:
				log.Printf("your hand: %v", payload.Cards)
			case message.PlayPlayedCards:
				log.Printf("player %s played %v", env.CreatedBy, payload.Cards)
			case message.PlayIsSkipped:
				log.Printf("player %s passed", env.CreatedBy)
			}
		case message.RoomPayload:
			log.Printf("room status: %s", payload.Status)
		default:
			log.Printf("message: %s", env.Type)
		}
	}
}
