// Package stats looks up World of Tanks players and clans through the
// Wargaming public API.
package stats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/keshon/sentinel/internal/collab"
	"github.com/keshon/sentinel/pkg/retrylimit"
	"github.com/valyala/fastjson"
)

var realmHosts = map[string]string{
	"eu":   "https://api.worldoftanks.eu",
	"na":   "https://api.worldoftanks.com",
	"com":  "https://api.worldoftanks.com",
	"asia": "https://api.worldoftanks.asia",
}

// Client implements collab.StatsProvider.
type Client struct {
	appID   string
	BaseURL string
	http    *http.Client
	limiter *retrylimit.AdaptiveLimiter
	parsers fastjson.ParserPool
}

func New(appID, realm string, hc *http.Client) (*Client, error) {
	if appID == "" {
		return nil, errors.New("wargaming application id is empty")
	}
	base, ok := realmHosts[strings.ToLower(realm)]
	if !ok {
		return nil, fmt.Errorf("unknown wargaming realm %q", realm)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		appID:   appID,
		BaseURL: base,
		http:    hc,
		limiter: retrylimit.NewAdaptiveLimiter(10, 1, 20, 1, 0.5),
	}, nil
}

func (c *Client) LookupPlayer(ctx context.Context, name string) (*collab.Player, error) {
	var id string
	err := c.get(ctx, "/wot/account/list/", url.Values{"search": {name}, "type": {"exact"}, "limit": {"1"}}, func(data *fastjson.Value) error {
		list := data.GetArray()
		if len(list) == 0 {
			return fmt.Errorf("player %q: %w", name, collab.ErrNotFound)
		}
		id = strconv.FormatInt(list[0].GetInt64("account_id"), 10)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var p *collab.Player
	err = c.get(ctx, "/wot/account/info/", url.Values{"account_id": {id}}, func(data *fastjson.Value) error {
		v := data.Get(id)
		if v == nil || v.Type() == fastjson.TypeNull {
			return fmt.Errorf("player %q: %w", name, collab.ErrNotFound)
		}
		p = &collab.Player{
			ID:         id,
			Nickname:   string(v.GetStringBytes("nickname")),
			Battles:    v.GetInt64("statistics", "all", "battles"),
			Wins:       v.GetInt64("statistics", "all", "wins"),
			Rating:     v.GetInt64("global_rating"),
			LastBattle: time.Unix(v.GetInt64("last_battle_time"), 0).UTC(),
		}
		if clanID := v.GetInt64("clan_id"); clanID != 0 {
			p.ClanID = strconv.FormatInt(clanID, 10)
		}
		return nil
	})
	return p, err
}

func (c *Client) LookupClan(ctx context.Context, query string) (*collab.Clan, error) {
	var id string
	err := c.get(ctx, "/wot/clans/list/", url.Values{"search": {query}, "limit": {"1"}}, func(data *fastjson.Value) error {
		list := data.GetArray()
		if len(list) == 0 {
			return fmt.Errorf("clan %q: %w", query, collab.ErrNotFound)
		}
		id = strconv.FormatInt(list[0].GetInt64("clan_id"), 10)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var clan *collab.Clan
	err = c.get(ctx, "/wot/clans/info/", url.Values{"clan_id": {id}}, func(data *fastjson.Value) error {
		v := data.Get(id)
		if v == nil || v.Type() == fastjson.TypeNull {
			return fmt.Errorf("clan %q: %w", query, collab.ErrNotFound)
		}
		clan = &collab.Clan{
			ID:      id,
			Tag:     string(v.GetStringBytes("tag")),
			Name:    string(v.GetStringBytes("name")),
			Members: v.GetInt64("members_count"),
			Leader:  string(v.GetStringBytes("leader_name")),
			Created: time.Unix(v.GetInt64("created_at"), 0).UTC(),
		}
		return nil
	})
	return clan, err
}

// get calls path and hands the "data" member of an ok response to fn.
func (c *Client) get(ctx context.Context, path string, q url.Values, fn func(data *fastjson.Value) error) error {
	q.Set("application_id", c.appID)
	u := c.BaseURL + path + "?" + q.Encode()

	return retrylimit.Do(ctx, c.limiter, retrylimit.DefaultConfig(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return &retrylimit.Permanent{Err: err}
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return &retrylimit.StatusError{Code: resp.StatusCode, Body: string(body)}
		}

		p := c.parsers.Get()
		defer c.parsers.Put(p)
		v, err := p.ParseBytes(body)
		if err != nil {
			return &retrylimit.Permanent{Err: fmt.Errorf("decode %s: %w", path, err)}
		}
		if status := string(v.GetStringBytes("status")); status != "ok" {
			return &retrylimit.Permanent{Err: fmt.Errorf("wargaming %s: %s", path, v.GetStringBytes("error", "message"))}
		}
		if err := fn(v.Get("data")); err != nil {
			return &retrylimit.Permanent{Err: err}
		}
		return nil
	})
}
