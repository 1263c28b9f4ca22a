package node

import (
	"fmt"
	"net"

	"github.com/duskchain/duskchain/pkg/wire"
)

// RequestOnce dials addr, sends req, reads exactly one reply, and closes
// the connection. This is the synchronous request/response pattern a
// client role (bootstrap, the external miner) uses against a node —
// distinct from Node's own dispatchLoop, which serves long-lived gossip
// connections asynchronously.
func RequestOnce(addr string, req wire.Message) (wire.Message, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return wire.Message{}, fmt.Errorf("node: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if err := wire.WriteMessage(conn, req); err != nil {
		return wire.Message{}, fmt.Errorf("node: write to %s: %w", addr, err)
	}
	reply, err := wire.ReadMessage(conn)
	if err != nil {
		return wire.Message{}, fmt.Errorf("node: read from %s: %w", addr, err)
	}
	return reply, nil
}

// Bootstrap implements the node startup sequence of spec §4.8 for a
// node given a non-empty initial peer list and no persisted chain
// file: discover each peer's neighbors, ask every known peer how its
// chain height compares to ours, download the full chain from whoever
// reports the largest positive difference, and adopt it.
func (n *Node) Bootstrap(initialPeers []string) error {
	known := make(map[string]struct{})
	for _, addr := range initialPeers {
		known[addr] = struct{}{}
	}

	for _, addr := range initialPeers {
		reply, err := RequestOnce(addr, wire.NewDiscoverNodes())
		if err != nil {
			n.logger.Warn().Str("peer", addr).Err(err).Msg("discover_nodes failed")
			continue
		}
		for _, neighbor := range reply.Addresses {
			known[neighbor] = struct{}{}
		}
	}

	bestAddr := ""
	var bestDelta int32
	height := uint64(n.chain.Height())
	for addr := range known {
		reply, err := RequestOnce(addr, wire.NewAskDifference(height))
		if err != nil {
			n.logger.Warn().Str("peer", addr).Err(err).Msg("ask_difference failed")
			continue
		}
		if bestAddr == "" || reply.Difference > bestDelta {
			bestAddr = addr
			bestDelta = reply.Difference
		}
	}
	if bestAddr == "" {
		return fmt.Errorf("node: bootstrap found no reachable peer among %v", initialPeers)
	}
	if bestDelta <= 0 {
		// No peer is ahead of us; nothing to download.
		for addr := range known {
			if _, err := n.Connect(addr); err != nil {
				n.logger.Warn().Str("peer", addr).Err(err).Msg("failed to join gossip network")
			}
		}
		return nil
	}

	for h := height; h < height+uint64(bestDelta); h++ {
		reply, err := RequestOnce(bestAddr, wire.NewFetchBlock(h))
		if err != nil || reply.Block == nil {
			break
		}
		if err := n.chain.AddBlock(*reply.Block); err != nil {
			n.logger.Warn().Str("peer", bestAddr).Uint64("height", h).Err(err).Msg("downloaded block failed validation")
			break
		}
	}

	for addr := range known {
		if _, err := n.Connect(addr); err != nil {
			n.logger.Warn().Str("peer", addr).Err(err).Msg("failed to join gossip network")
		}
	}
	return nil
}
