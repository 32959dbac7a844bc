package bot

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
)

// commandDefinitions returns every slash command the bot registers
// globally on startup.
func commandDefinitions() []discord.ApplicationCommandCreate {
	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        "ban",
			Description: "Ban a user from the server",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to ban",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the ban",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "days",
					Description: "Days until the ban expires (omit for permanent)",
					MinValue:    json.Ptr(1),
					MaxValue:    json.Ptr(365),
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "unban",
			Description: "Unban a user from the server",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "userid",
					Description: "The ID of the user to unban",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the unban",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "kick",
			Description: "Kick a user from the server",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to kick",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the kick",
					Required:    true,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "mute",
			Description: "Timeout a user for a set duration",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to mute",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "days",
					Description: "Days component of the duration",
					MinValue:    json.Ptr(0),
					MaxValue:    json.Ptr(28),
				},
				discord.ApplicationCommandOptionInt{
					Name:        "hours",
					Description: "Hours component of the duration",
					MinValue:    json.Ptr(0),
					MaxValue:    json.Ptr(23),
				},
				discord.ApplicationCommandOptionInt{
					Name:        "minutes",
					Description: "Minutes component of the duration",
					MinValue:    json.Ptr(0),
					MaxValue:    json.Ptr(59),
				},
				discord.ApplicationCommandOptionInt{
					Name:        "seconds",
					Description: "Seconds component of the duration",
					MinValue:    json.Ptr(0),
					MaxValue:    json.Ptr(59),
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the mute",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "unmute",
			Description: "Remove a user's timeout",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to unmute",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the unmute",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "servermute",
			Description: "Server mute a user in voice channels",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to server mute",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "duration",
					Description: "Duration in minutes (omit for indefinite)",
					MinValue:    json.Ptr(1),
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the server mute",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "serverunmute",
			Description: "Remove a user's voice server mute",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to unmute",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the unmute",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "warn",
			Description: "Warn a user",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to warn",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the warning",
					Required:    true,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "unwarn",
			Description: "Remove a warning from a user",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to remove the warning from",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "warnid",
					Description: "The ID of the warning to remove",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for removing the warning",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "warnings",
			Description: "View a user's warnings",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user whose warnings to view",
					Required:    true,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "jail",
			Description: "Jail a user, removing their roles",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to jail",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the jail",
					Required:    true,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "unjail",
			Description: "Release a user from jail",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to release",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the release",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "purge",
			Description: "Bulk delete messages in a channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "range",
					Description: "How many messages to scan (1-100)",
					Required:    true,
					MinValue:    json.Ptr(1),
					MaxValue:    json.Ptr(100),
				},
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "Only delete messages from this user",
				},
				discord.ApplicationCommandOptionChannel{
					Name:        "channel",
					Description: "Channel to purge (defaults to the current one)",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "warningconfig",
			Description: "Configure warning thresholds for automated actions",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        "mutethreshold",
					Description: "Set the number of warnings before auto-mute",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionInt{
							Name:        "count",
							Description: "Number of warnings before muting",
							Required:    true,
							MinValue:    json.Ptr(1),
							MaxValue:    json.Ptr(10),
						},
						discord.ApplicationCommandOptionInt{
							Name:        "duration",
							Description: "Mute duration in minutes",
							Required:    true,
							MinValue:    json.Ptr(1),
							MaxValue:    json.Ptr(1440),
						},
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        "banthreshold",
					Description: "Set the number of warnings before auto-ban",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionInt{
							Name:        "count",
							Description: "Number of warnings before banning",
							Required:    true,
							MinValue:    json.Ptr(2),
							MaxValue:    json.Ptr(15),
						},
					},
				},
			},
		},
	}
}
