package config

// fallbackAllowlist is used when the remote allowlist cannot be loaded.
var fallbackAllowlist = []string{
	"adriana.venialgo@newsan.com.ar",
	"ailin.chavarria@newsan.com.ar",
	"alisondenise.mendez@newsan.com.ar",
	"azul.gon@newsan.com.ar",
	"bella.quinteros@newsan.com.ar",
	"brian.moreyra@newsan.com.ar",
	"brisa.caballero@newsan.com.ar",
	"carlos.ramos@newsan.com.ar",
	"cristian.ramirez@newsan.com.ar",
	"daniel.maidana@newsan.com.ar",
	"elias.esperguen@newsan.com.ar",
	"ester.gago@newsan.com.ar",
	"facundomatias.tisera@newsan.com.ar",
	"fiorela.faydella@newsan.com.ar",
	"guadalupe.cabana@newsan.com.ar",
	"joaquin.acevedo@newsan.com.ar",
	"lucas.ruiz@newsan.com.ar",
	"lucia.castronuevo@newsan.com.ar",
	"luismiguel.dimatteo@newsan.com.ar",
	"mairaalejandra.morales@newsan.com.ar",
	"maria.figueroa@newsan.com.ar",
	"maria.requena@newsan.com.ar",
	"mario.barrios@newsan.com.ar",
	"maximiliano.vargas@newsan.com.ar",
	"mayra.tapia@newsan.com.ar",
	"pablomartin.gatica@newsan.com.ar",
	"paulacecilia.galvan@newsan.com.ar",
	"reneorlando.maldonado@newsan.com.ar",
	"rocio.gamiz@newsan.com.ar",
	"romina.morales@newsan.com.ar",
	"ruthevelin.gomez@newsan.com.ar",
	"samuel.molina@newsan.com.ar",
	"sebastian.orellano@newsan.com.ar",
	"teresita.flores@newsan.com.ar",
}
