// Package websocket provides real-time event streaming via WebSocket.
//
// Clients connect to /ws/events to receive enrollment events as they are
// published; an activity query parameter narrows the stream to one
// activity.
package websocket
