package ws

import (
	"github.com/akinalp/hush/models"
	"github.com/akinalp/hush/pkg/i18n"
)

// Eski protokol client'ları invite/whisper cmd'lerini bilmez; aşağıdaki
// fonksiyonlar güncel payload'ları type alanlı info mesajlarına çevirir.
// *Reply: gönderene giden onay, *Out: hedefe giden bildirim.
//
// Metin alıcının dilinde üretilir. Gerçek ve sahte onaylar aynı
// fonksiyonlardan geçer, bu yüzden ikisi birbirinden ayırt edilemez.

// LegacyInviteReply, davet gönderene giden onayı üretir.
func LegacyInviteReply(p InvitePayload, targetNick, lang string) LegacyInfoPayload {
	return LegacyInfoPayload{
		Cmd:           CmdInfo,
		Type:          InfoTypeInvite,
		InviteChannel: p.InviteChannel,
		Text: i18n.NewLocalizer(lang).TWithParams("info.invited", map[string]string{
			"nick":    targetNick,
			"channel": p.InviteChannel,
		}),
		Channel: p.Channel,
	}
}

// LegacyInviteOut, davet edilene giden bildirimi üretir.
func LegacyInviteOut(p InvitePayload, senderNick, lang string) LegacyInfoPayload {
	return LegacyInfoPayload{
		Cmd:           CmdInfo,
		Type:          InfoTypeInvite,
		From:          senderNick,
		InviteChannel: p.InviteChannel,
		Text: i18n.NewLocalizer(lang).TWithParams("info.invitedYou", map[string]string{
			"nick":    senderNick,
			"channel": p.InviteChannel,
		}),
		Channel: p.Channel,
	}
}

// LegacyWhisperReply, fısıldayana giden onayı üretir.
func LegacyWhisperReply(p WhisperPayload, targetNick, lang string) LegacyInfoPayload {
	return LegacyInfoPayload{
		Cmd:  CmdInfo,
		Type: InfoTypeWhisper,
		Text: i18n.NewLocalizer(lang).TWithParams("info.whisperSent", map[string]string{
			"nick": targetNick,
			"text": p.Text,
		}),
		Channel: p.Channel,
	}
}

// LegacyWhisperOut, fısıltının hedefine giden bildirimi üretir.
func LegacyWhisperOut(p WhisperPayload, sender *models.ChatUser, lang string) LegacyInfoPayload {
	return LegacyInfoPayload{
		Cmd:   CmdInfo,
		Type:  InfoTypeWhisper,
		From:  sender.Nick,
		Trip:  sender.Trip,
		Level: sender.Level,
		UType: sender.UType,
		Text: i18n.NewLocalizer(lang).TWithParams("info.whisperReceived", map[string]string{
			"nick": sender.Nick,
			"text": p.Text,
		}),
		Channel: p.Channel,
	}
}
