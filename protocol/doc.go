package protocol

// This package implements parsing and serialising for the ServerQuery
// protocol, the line based text interface used to administer a voice server.
//
// - `Request`  - A command line sent by the client.
// - `Entry`    - One record of `key[=value]` tokens in a reply.
// - `Response` - The entries a command returned.
// - `Error`    - The status line terminating every reply.
//
// === General Syntax
//
// - the server terminates lines with `\n\r`, the client with `\n`
// - a command is its name followed by `key=value` arguments and bare flags
//
//   ```
//     > login client_login_name=serveradmin client_login_password=secret
//     < error id=0 msg=ok
//   ```
//
// Commands that return data send one data line before the status line.
// Lists are sent as entries separated by `|`.
//
//   ```
//     > version
//     < version=3.13.7 build=1655727713 platform=Linux
//     < error id=0 msg=ok
//   ```
//
// The status line is always sent. An id other than 0 means the command
// failed, even when a data line was sent before it.
//
//   ```
//     > use sid=9
//     < error id=1024 msg=invalid\sserverID
//   ```
//
// === Notifications
//
// After `servernotifyregister` the server pushes notifications at any time,
// including between a command and its reply. They are the first token of
// their line (e.g. `notifytextmessage`), are never followed by a status
// line and are recognised by name.
//
// === Value encoding
//
// Strings escape `\`, `/`, space, `|` and the control characters BEL, BS,
// FF, LF, CR, TAB and VT as `\\`, `\/`, `\s`, `\p`, `\a`, `\b`, `\f`, `\n`,
// `\r`, `\t` and `\v`.
//
// Booleans are a single byte where `0` is true and `1` is false.
//
// Some fields hold lists separated by `,` instead of `|`, e.g. the server
// groups of a client.
