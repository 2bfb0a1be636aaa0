package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	serverAddr = flag.String("addr", "http://localhost:8080", "The server address")
)

type bookLevel struct {
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
	Orders   int    `json:"orders"`
}

type bookSnapshot struct {
	Seq  uint64      `json:"seq"`
	Bids []bookLevel `json:"bids"`
	Asks []bookLevel `json:"asks"`
}

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Remove the command from os.Args to make flag parsing work
	os.Args = append(os.Args[:1], os.Args[2:]...)

	switch command {
	case "submit":
		submitOrder(os.Args[1:]...)
	case "cancel":
		if len(os.Args) < 2 {
			fmt.Println("Usage: cancel <order_id>")
			os.Exit(1)
		}
		cancelOrder(os.Args[1])
	case "book":
		showBook()
	case "orders":
		listOrders()
	case "trades":
		recentTrades()
	case "halt":
		adminPost("/api/admin/halt", "Engine halted")
	case "resume":
		adminPost("/api/admin/resume", "Engine resumed")
	case "watch-book":
		watch("/ws/orderbook")
	case "watch-trades":
		watch("/ws/trades")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func postJSON(path string, body any) (*http.Response, error) {
	flag.Parse()
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return http.Post(*serverAddr+path, "application/json", bytes.NewReader(payload))
}

func getJSON(path string, out any) error {
	flag.Parse()
	resp, err := http.Get(*serverAddr + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func submitOrder(args ...string) {
	side := flag.String("side", "", "Order side (buy/sell)")
	price := flag.String("price", "", "Limit price")
	qty := flag.Int64("qty", 0, "Order quantity")
	user := flag.String("user", "", "User identity")
	flag.Parse()

	// If no flags are set, use positional arguments
	if *side == "" && len(args) >= 3 {
		side = &args[0]
		price = &args[1]
		q, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			log.Fatal().Str("quantity", args[2]).Msg("Invalid quantity")
		}
		qty = &q
		if len(args) >= 4 {
			user = &args[3]
		}
	}

	if *side == "" || *price == "" || *qty == 0 {
		fmt.Println("Usage: submit <side> <price> <quantity> [user]")
		fmt.Println("   or: submit --side=<buy|sell> --price=<price> --qty=<quantity> [--user=<id>]")
		os.Exit(1)
	}

	resp, err := postJSON("/api/orders", map[string]any{
		"side":     strings.ToLower(*side),
		"price":    *price,
		"quantity": *qty,
		"user_id":  *user,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Submit failed")
	}
	defer resp.Body.Close()

	var result struct {
		Success   bool   `json:"success"`
		OrderID   uint64 `json:"order_id"`
		Message   string `json:"message"`
		Executed  int64  `json:"executed_quantity"`
		Remaining int64  `json:"remaining_quantity"`
		Resting   bool   `json:"resting"`
		Trades    []struct {
			ID       uint64 `json:"id"`
			Price    string `json:"price"`
			Quantity int64  `json:"quantity"`
		} `json:"trades"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatal().Err(err).Msg("Failed to decode response")
	}
	if !result.Success {
		log.Fatal().Str("message", result.Message).Msg("Order rejected")
	}

	log.Info().
		Uint64("order_id", result.OrderID).
		Int64("executed", result.Executed).
		Int64("remaining", result.Remaining).
		Bool("resting", result.Resting).
		Msg("Order accepted")

	for i, trade := range result.Trades {
		log.Info().
			Int("index", i+1).
			Uint64("trade_id", trade.ID).
			Str("price", trade.Price).
			Int64("quantity", trade.Quantity).
			Msg("Fill")
	}
}

func cancelOrder(id string) {
	orderID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		log.Fatal().Str("order_id", id).Msg("Invalid order id")
	}

	resp, err := postJSON("/api/orders/cancel", map[string]any{"order_id": orderID})
	if err != nil {
		log.Fatal().Err(err).Msg("Cancel failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Fatal().Str("response", strings.TrimSpace(string(body))).Msg("Cancel rejected")
	}
	log.Info().Uint64("order_id", orderID).Msg("Order canceled")
}

func showBook() {
	depth := flag.Int("depth", 0, "Levels per side (0 = all)")
	flag.Parse()

	var snap bookSnapshot
	path := "/api/orderbook"
	if *depth > 0 {
		path = fmt.Sprintf("%s?depth=%d", path, *depth)
	}
	if err := getJSON(path, &snap); err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch order book")
	}

	if err := renderBook(os.Stdout, &snap); err != nil {
		log.Fatal().Err(err).Msg("Failed to render order book")
	}
}

func renderBook(out io.Writer, snap *bookSnapshot) error {
	color.NoColor = false
	cyan := color.New(color.FgCyan).SprintfFunc()
	red := color.New(color.FgRed).SprintfFunc()
	green := color.New(color.FgGreen).SprintfFunc()

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)

	fmt.Fprintf(w, "%15s|%15s|%15s|%s\n",
		cyan("Price"),
		cyan("Quantity"),
		cyan("Orders"),
		cyan("Side"))
	fmt.Fprintf(w, "%15s|%15s|%15s|%s\n",
		"---------------",
		"---------------",
		"---------------",
		"----")

	// Asks print high to low so the spread sits in the middle of the view.
	for i := len(snap.Asks) - 1; i >= 0; i-- {
		level := snap.Asks[i]
		price, _ := strconv.ParseFloat(level.Price, 64)
		fmt.Fprintf(w, "%15.3f|%15d|%15d|%s\n",
			price,
			level.Quantity,
			level.Orders,
			red("ASK"))
	}

	fmt.Fprintf(w, "%15s|%15s|%15s|%s\n",
		"---------------",
		"---------------",
		"---------------",
		"----")

	for _, level := range snap.Bids {
		price, _ := strconv.ParseFloat(level.Price, 64)
		fmt.Fprintf(w, "%15.3f|%15d|%15d|%s\n",
			price,
			level.Quantity,
			level.Orders,
			green("BID"))
	}

	return w.Flush()
}

func listOrders() {
	var resp struct {
		Orders []struct {
			ID       uint64 `json:"id"`
			Side     string `json:"side"`
			Price    string `json:"price"`
			Quantity int64  `json:"quantity"`
			User     string `json:"user"`
		} `json:"orders"`
	}
	if err := getJSON("/api/orders/all", &resp); err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch orders")
	}

	log.Info().Int("count", len(resp.Orders)).Msg("Resting orders")
	for _, o := range resp.Orders {
		log.Info().
			Uint64("order_id", o.ID).
			Str("side", o.Side).
			Str("price", o.Price).
			Int64("quantity", o.Quantity).
			Str("user", o.User).
			Msg("Order")
	}
}

func recentTrades() {
	limit := flag.Int("limit", 20, "Maximum number of trades")
	flag.Parse()

	var resp struct {
		Trades []struct {
			TradeID   uint64 `json:"trade_id"`
			Price     string `json:"price"`
			Quantity  int64  `json:"quantity"`
			TakerSide string `json:"taker_side"`
		} `json:"trades"`
	}
	if err := getJSON(fmt.Sprintf("/api/trades/recent?limit=%d", *limit), &resp); err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch trades")
	}

	log.Info().Int("count", len(resp.Trades)).Msg("Recent trades")
	for _, t := range resp.Trades {
		log.Info().
			Uint64("trade_id", t.TradeID).
			Str("price", t.Price).
			Int64("quantity", t.Quantity).
			Str("taker_side", t.TakerSide).
			Msg("Trade")
	}
}

func adminPost(path, msg string) {
	resp, err := postJSON(path, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal().Str("status", resp.Status).Msg("Request rejected")
	}
	log.Info().Msg(msg)
}

// watch streams a websocket feed to stdout until interrupted.
func watch(path string) {
	flag.Parse()
	wsURL := strings.Replace(*serverAddr, "http", "ws", 1) + path

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", wsURL).Msg("Failed to connect")
	}
	defer conn.Close()

	log.Info().Str("url", wsURL).Msg("Connected, streaming (Ctrl-C to stop)")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		os.Exit(0)
	}()

	for {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			log.Fatal().Err(err).Msg("Stream closed")
		}
		fmt.Printf("[%s] %s\n", msg.Type, string(msg.Payload))
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  submit <side> <price> <quantity> [user]")
	fmt.Println("  cancel <order_id>")
	fmt.Println("  book [--depth=N]")
	fmt.Println("  orders")
	fmt.Println("  trades [--limit=N]")
	fmt.Println("  halt")
	fmt.Println("  resume")
	fmt.Println("  watch-book")
	fmt.Println("  watch-trades")
	fmt.Println("\nExamples:")
	fmt.Println("  submit buy 100.5 10 alice")
	fmt.Println("  submit --side=sell --price=101.0 --qty=5")
	fmt.Println("  cancel 42")
	fmt.Println("  book --depth=10")
	fmt.Println("  watch-trades")
}
