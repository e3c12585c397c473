// Package config loads the client configuration.
//
// Values are resolved in this order, later sources winning:
//  1. Defaults declared on Config with envDefault tags
//  2. A .env file in the working directory, if present (joho/godotenv)
//  3. Process environment (caarlos0/env)
//  4. Command line flags, applied by the entry point
//
// Environment Variables:
//   - TINYCHAT_ROOM: room to join
//   - TINYCHAT_NICK: nickname to request
//   - TINYCHAT_TOKEN_URL: token endpoint base URL
//   - TINYCHAT_TOKEN_PATH: gjson path of the token in the response
//   - TINYCHAT_SOCKET_URL: websocket endpoint
//   - TINYCHAT_HTTP_TIMEOUT: token request timeout (Go duration)
//   - TINYCHAT_RECORD: file to append inbound frames to
//   - TINYCHAT_DEBUG: log every frame
//
// Room and nickname may be left empty here; the entry point prompts for them
// before calling Validate.
package config
