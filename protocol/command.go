package protocol

// Command is the first token of a request line.
type Command string

const (
	CmdAPIKeyAdd            Command = "apikeyadd"
	CmdAPIKeyDel            Command = "apikeydel"
	CmdAPIKeyList           Command = "apikeylist"
	CmdBanAdd               Command = "banadd"
	CmdChannelList          Command = "channellist"
	CmdClientList           Command = "clientlist"
	CmdGM                   Command = "gm"
	CmdLogin                Command = "login"
	CmdLogout               Command = "logout"
	CmdQuit                 Command = "quit"
	CmdSendTextMessage      Command = "sendtextmessage"
	CmdServerGroupAddClient Command = "servergroupaddclient"
	CmdServerGroupDelClient Command = "servergroupdelclient"
	CmdServerNotifyRegister Command = "servernotifyregister"
	CmdServerStart          Command = "serverstart"
	CmdServerStop           Command = "serverstop"
	CmdUse                  Command = "use"
	CmdVersion              Command = "version"
	CmdWhoAmI               Command = "whoami"
)
